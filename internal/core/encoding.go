package core

// encoding.go resolves text encoding names to golang.org/x/text codecs.
//
// Names follow the WHATWG Encoding Standard labels ("utf-8", "latin1",
// "windows-1252", "shift_jis", ...). UTF-8 needs no conversion, so it
// resolves to a nil Encoding and the streams are used as-is.

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when no encoding name is given.
const DefaultEncoding = "utf-8"

// LookupEncoding resolves an encoding label. An empty name means UTF-8.
// It returns a nil Encoding for UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" {
		label = DefaultEncoding
	}
	// Python-style spellings such as "utf_8" or "latin_1".
	label = strings.ReplaceAll(label, "_", "-")

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, &EncodingError{Name: name}
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// decodeReader returns r converted to UTF-8 from enc.
func decodeReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// encodeWriter returns a writer that converts UTF-8 to enc. The returned
// closer flushes any buffered bytes and must be called before the
// underlying file is closed.
func encodeWriter(w io.Writer, enc encoding.Encoding) (io.Writer, func() error) {
	if enc == nil {
		return w, func() error { return nil }
	}
	tw := transform.NewWriter(w, enc.NewEncoder())
	return tw, tw.Close
}
