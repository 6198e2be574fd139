package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLookupEncoding(t *testing.T) {
	tests := []struct {
		name     string
		wantNil  bool
		wantErr  bool
	}{
		{name: "", wantNil: true},
		{name: "utf-8", wantNil: true},
		{name: "UTF8", wantNil: true},
		{name: "utf_8", wantNil: true},
		{name: "latin1"},
		{name: "windows-1252"},
		{name: "shift_jis"},
		{name: "utf-16le"},
		{name: "klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupEncoding(tt.name)
			if tt.wantErr {
				var ee *EncodingError
				if !errors.As(err, &ee) {
					t.Fatalf("err = %v, want *EncodingError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (enc == nil) != tt.wantNil {
				t.Errorf("enc = %v, wantNil %v", enc, tt.wantNil)
			}
		})
	}
}

func TestEncodeDecodeStreams(t *testing.T) {
	enc, err := LookupEncoding("windows-1252")
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := io.ReadAll(decodeReader(strings.NewReader("caf\xe9"), enc))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "café" {
		t.Errorf("decoded = %q, want %q", decoded, "café")
	}

	var buf bytes.Buffer
	w, flush := encodeWriter(&buf, enc)
	if _, err := io.WriteString(w, "café"); err != nil {
		t.Fatal(err)
	}
	if err := flush(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "caf\xe9" {
		t.Errorf("encoded = %q, want %q", buf.String(), "caf\xe9")
	}
}

func TestProcessStream_UTF16WithBOM(t *testing.T) {
	// "a\nx\n" in UTF-16LE preceded by its BOM.
	input := []byte{0xFF, 0xFE, 'a', 0, '\n', 0, 'x', 0, '\n', 0}

	var buf bytes.Buffer
	res, err := New().ProcessStream(context.Background(), bytes.NewReader(input), &buf, "utf-16le")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rows != 1 {
		t.Errorf("Rows = %d, want 1", res.Rows)
	}
	want := []byte{'a', 0, '\n', 0, 'x', 0, '\n', 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("output = %v, want %v", buf.Bytes(), want)
	}
}
