package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "missing header",
			err:      &MissingHeaderError{Path: "in.csv"},
			wantCode: "HDR001",
		},
		{
			name:     "wrapped sentinel",
			err:      fmt.Errorf("run: %w", ErrMissingHeader),
			wantCode: "HDR001",
		},
		{
			name:     "unknown column",
			err:      &UnknownColumnError{Missing: []string{"x"}},
			wantCode: "COL001",
		},
		{
			name:     "input not found",
			err:      &FileAccessError{Op: "open", Path: "a.csv", Err: fs.ErrNotExist},
			wantCode: "FILE001",
		},
		{
			name:     "permission denied",
			err:      &FileAccessError{Op: "create", Path: "b.csv", Err: fs.ErrPermission},
			wantCode: "FILE002",
		},
		{
			name:     "same file",
			err:      &FileAccessError{Op: "create", Path: "a.csv", Err: ErrSameFile},
			wantCode: "FILE003",
		},
		{
			name:     "other file access",
			err:      &FileAccessError{Op: "open", Path: "a.csv", Err: errors.New("is a directory")},
			wantCode: "FILE004",
		},
		{
			name:     "encoding",
			err:      &EncodingError{Name: "klingon"},
			wantCode: "ENC001",
		},
		{
			name:     "csv parse error",
			err:      fmt.Errorf("reading input: %w", &csv.ParseError{Line: 3, Err: csv.ErrBareQuote}),
			wantCode: "CSV001",
		},
		{
			name:     "cancelled",
			err:      fmt.Errorf("operation cancelled after 10 rows: %w", context.Canceled),
			wantCode: "CTX001",
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantCode: "CTX002",
		},
		{
			name:     "plain text transformer error",
			err:      errors.New(`unknown transformer "reverse"`),
			wantCode: "XFM001",
		},
		{
			name:     "plain text profile error",
			err:      errors.New("failed to parse profile YAML: bad indent"),
			wantCode: "PRF001",
		},
		{
			name:     "case insensitive pattern",
			err:      errors.New("OPEN X: NO SUCH FILE OR DIRECTORY"),
			wantCode: "FILE001",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("something completely unexpected"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned empty message")
			}
		})
	}
}

func TestMapError_AllMessagesHaveAction(t *testing.T) {
	for _, ep := range errorPatterns {
		if ep.msg.Action == "" {
			t.Errorf("pattern %q has empty action", ep.pattern)
		}
		if ep.msg.Code == "" {
			t.Errorf("pattern %q has empty code", ep.pattern)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(&UnknownColumnError{Missing: []string{"phone", "fax"}})
	want := `columns not found in input file: "phone", "fax" [COL001]`
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user-facing")
	}
	if !IsUserFacing(&EncodingError{Name: "x"}) {
		t.Error("encoding error should be user-facing")
	}
	if IsUserFacing(errors.New("random internal error")) {
		t.Error("random error should not be user-facing")
	}
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&MissingHeaderError{}, "input CSV file has no header row"},
		{&MissingHeaderError{Path: "a.csv"}, "a.csv: input CSV file has no header row"},
		{&UnknownColumnError{Missing: []string{"x"}}, `columns not found in input file: "x"`},
		{&EncodingError{Name: "foo"}, `unknown encoding "foo"`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	fa := &FileAccessError{Op: "open", Path: "a.csv", Err: fs.ErrNotExist}
	if !strings.Contains(fa.Error(), "cannot open a.csv") {
		t.Errorf("unexpected FileAccessError message %q", fa.Error())
	}
	if !errors.Is(fa, fs.ErrNotExist) {
		t.Error("FileAccessError should unwrap to its cause")
	}
}
