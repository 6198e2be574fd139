package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingHeader is matched (via errors.Is) by every MissingHeaderError.
var ErrMissingHeader = errors.New("input CSV file has no header row")

// MissingHeaderError is returned when the input contains no records at all.
// A file with a header and zero data rows is valid and does not produce it.
type MissingHeaderError struct {
	Path string
}

func (e *MissingHeaderError) Error() string {
	if e.Path == "" {
		return ErrMissingHeader.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, ErrMissingHeader.Error())
}

// Is reports whether target is ErrMissingHeader.
func (e *MissingHeaderError) Is(target error) bool {
	return target == ErrMissingHeader
}

// UnknownColumnError lists every requested output column absent from the header.
type UnknownColumnError struct {
	Missing []string
}

func (e *UnknownColumnError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return "columns not found in input file: " + strings.Join(quoted, ", ")
}

// FileAccessError wraps a failure to open or create one of the pipeline's files.
type FileAccessError struct {
	Op   string // "open" or "create"
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// EncodingError is returned for a text encoding name that cannot be resolved.
type EncodingError struct {
	Name string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unknown encoding %q", e.Name)
}
