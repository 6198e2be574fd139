package core

// error_messages.go maps pipeline errors to short user-facing messages with
// a code for support reference. The CLI prints them on stderr and the HTTP
// front-end returns them as JSON.
//
// Codes:
//
//	HDR001  - input has no header row
//	COL001  - requested column(s) not in the header
//	FILE001 - file not found
//	FILE002 - permission denied
//	FILE003 - output would overwrite input
//	FILE004 - other file access problem
//	ENC001  - unknown text encoding
//	CSV001  - malformed CSV
//	XFM001  - bad transformer spec or name
//	PRF001  - unreadable profile
//	CTX001  - cancelled
//	CTX002  - timed out
//	ERR000  - anything else
//
// Typed errors are checked first with errors.As / errors.Is; message
// patterns are the fallback for errors that arrive as plain text.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingHeader = UserMessage{
		Message: "The input file has no header row",
		Action:  "Add a header line naming each column",
		Code:    "HDR001",
	}
	msgUnknownColumn = UserMessage{
		Message: "Requested columns were not found in the input file",
		Action:  "Run 'csvcut columns FILE' to list the available columns",
		Code:    "COL001",
	}
	msgNotFound = UserMessage{
		Message: "File not found",
		Action:  "Check the path and try again",
		Code:    "FILE001",
	}
	msgPermission = UserMessage{
		Message: "Permission denied",
		Action:  "Check file and directory permissions",
		Code:    "FILE002",
	}
	msgSameFile = UserMessage{
		Message: "Output path is the same file as the input",
		Action:  "Write the output to a different path",
		Code:    "FILE003",
	}
	msgFileAccess = UserMessage{
		Message: "The file could not be opened",
		Action:  "Check the path and try again",
		Code:    "FILE004",
	}
	msgEncoding = UserMessage{
		Message: "Unknown text encoding",
		Action:  "Use an encoding label such as utf-8, latin1 or windows-1252",
		Code:    "ENC001",
	}
	msgInvalidCSV = UserMessage{
		Message: "The input is not valid CSV",
		Action:  "Check quoting near the reported line; quotes inside a field must be doubled",
		Code:    "CSV001",
	}
	msgTransformer = UserMessage{
		Message: "Invalid transformer",
		Action:  "Run 'csvcut transformers' to list names and arguments",
		Code:    "XFM001",
	}
	msgProfile = UserMessage{
		Message: "The profile could not be loaded",
		Action:  "Check the profile YAML",
		Code:    "PRF001",
	}
	msgCancelled = UserMessage{
		Message: "Processing was cancelled",
		Action:  "Run the command again",
		Code:    "CTX001",
	}
	msgTimeout = UserMessage{
		Message: "Processing timed out",
		Action:  "Try a smaller file or raise the timeout",
		Code:    "CTX002",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Re-run with --loglevel debug for details",
		Code:    "ERR000",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively with strings.Contains.
// The first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "no header row", msg: msgMissingHeader},
	{pattern: "columns not found", msg: msgUnknownColumn},
	{pattern: "unknown encoding", msg: msgEncoding},
	{pattern: "unknown transformer", msg: msgTransformer},
	{pattern: "invalid transformer spec", msg: msgTransformer},
	{pattern: "transformer \"", msg: msgTransformer},
	{pattern: "profile", msg: msgProfile},
	{pattern: "no such file", msg: msgNotFound},
	{pattern: "permission denied", msg: msgPermission},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgTimeout},
}

// MapError converts an error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		unknown *UnknownColumnError
		access  *FileAccessError
		encErr  *EncodingError
		parse   *csv.ParseError
	)
	switch {
	case errors.Is(err, ErrMissingHeader):
		return msgMissingHeader
	case errors.As(err, &unknown):
		return msgUnknownColumn
	case errors.As(err, &encErr):
		return msgEncoding
	case errors.As(err, &access):
		switch {
		case errors.Is(err, ErrSameFile):
			return msgSameFile
		case errors.Is(err, fs.ErrNotExist):
			return msgNotFound
		case errors.Is(err, fs.ErrPermission):
			return msgPermission
		}
		return msgFileAccess
	case errors.As(err, &parse):
		return msgInvalidCSV
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "<technical message> [CODE]". The technical
// message is kept because it names the offending file or column.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%v [%s]", err, msg.Code)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
