package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via mapError (core.MapError plus request errors)
//  4. Technical error + code is logged with the request ID for correlation
//  5. The message is returned as JSON

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/csvcut/internal/core"
	"github.com/JonMunkholm/csvcut/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Error carries the technical message because it names the offending
// column or file.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var (
	msgBadUpload = core.UserMessage{
		Message: "The upload could not be read",
		Action:  `Send a multipart form with the CSV file in the "file" field`,
		Code:    "REQ001",
	}
	msgTooLarge = core.UserMessage{
		Message: "The uploaded file is too large",
		Action:  "Upload a smaller file or raise SERVER_MAX_UPLOAD_SIZE",
		Code:    "REQ002",
	}
	msgBusy = core.UserMessage{
		Message: "The server is busy processing other files",
		Action:  "Try again in a moment",
		Code:    "REQ003",
	}
)

// mapError extends core.MapError with request-level failures.
func mapError(err error) core.UserMessage {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return msgTooLarge
	case errors.Is(err, errBadUpload):
		return msgBadUpload
	case errors.Is(err, errBusy):
		return msgBusy
	}
	return core.MapError(err)
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// Client went away; the status is only seen in logs.
		return 499
	case errors.Is(err, errBadUpload), core.IsUserFacing(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as a JSON ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusFor(err)
	userMsg := mapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	// Internal failures don't leak their details.
	detail := err.Error()
	if statusCode == http.StatusInternalServerError {
		detail = userMsg.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, ErrorResponse{
		Error:   detail,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
