package core

// streaming.go provides io.Reader wrappers applied to the input before CSV
// parsing:
//
//   - CountingReader: tracks raw bytes read from the file
//   - BOMSkippingReader: drops a leading UTF-8 byte order mark
//   - UTF8Sanitizer: replaces invalid UTF-8 bytes with '?' (opt-in)
//   - quoteTracker: notices a quoted field still open at end of input
//
// The BOM check runs after decoding, so a UTF-16 BOM (which decodes to
// U+FEFF) is removed the same way as a UTF-8 one.

import (
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CountingReader wraps an io.Reader and counts the bytes read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	drained bool   // underlying reader hit EOF during the BOM check
	head    []byte // bytes read during the check that are not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call peeks at up to three bytes.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		switch err {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			r.drained = true
		default:
			return 0, err
		}
		if !bytes.Equal(buf[:n], utf8BOM) {
			r.head = append([]byte(nil), buf[:n]...)
		}
	}

	if len(r.head) > 0 {
		n := copy(p, r.head)
		r.head = r.head[n:]
		return n, nil
	}
	if r.drained {
		return 0, io.EOF
	}
	return r.reader.Read(p)
}

// UTF8Sanitizer wraps an io.Reader and replaces each invalid UTF-8 byte
// with '?'. Multi-byte sequences split across reads are carried over to the
// next read, so memory use stays bounded by the caller's buffer size.
type UTF8Sanitizer struct {
	reader io.Reader
	chunk  []byte
	in     []byte // read but not yet decoded
	out    []byte // sanitized, not yet returned
	err    error
}

// NewUTF8Sanitizer creates a new sanitizing reader.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{reader: r}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		if cap(s.chunk) < len(p) {
			s.chunk = make([]byte, max(len(p), utf8.UTFMax))
		}
		n, err := s.reader.Read(s.chunk[:cap(s.chunk)])
		s.in = append(s.in, s.chunk[:n]...)
		s.err = err
		s.decode(err != nil)
	}
	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// decode moves complete runes from in to out. Unless final, a trailing
// incomplete sequence stays in in.
func (s *UTF8Sanitizer) decode(final bool) {
	i := 0
	for i < len(s.in) {
		if !final && !utf8.FullRune(s.in[i:]) {
			break
		}
		r, size := utf8.DecodeRune(s.in[i:])
		if r == utf8.RuneError && size == 1 {
			s.out = append(s.out, '?')
		} else {
			s.out = append(s.out, s.in[i:i+size]...)
		}
		i += size
	}
	s.in = append(s.in[:0], s.in[i:]...)
}

type quoteState uint8

const (
	fieldStart quoteState = iota
	inUnquoted
	inQuoted
	quoteInQuoted // a '"' inside a quoted field: closes it or escapes the next one
)

// quoteTracker follows CSV field quoting over the bytes read through it.
// Lenient parsing accepts stray quotes anywhere, including a quoted field
// that never closes; the tracker lets the pipeline reject that last case.
type quoteTracker struct {
	reader io.Reader
	state  quoteState
	n      int64
	eof    bool
}

func newQuoteTracker(r io.Reader) *quoteTracker {
	return &quoteTracker{reader: r}
}

// Read implements io.Reader.
func (q *quoteTracker) Read(p []byte) (int, error) {
	n, err := q.reader.Read(p)
	q.n += int64(n)
	for _, b := range p[:n] {
		q.step(b)
	}
	if err == io.EOF {
		q.eof = true
	}
	return n, err
}

func (q *quoteTracker) step(b byte) {
	switch q.state {
	case fieldStart:
		switch b {
		case '"':
			q.state = inQuoted
		case ',', '\n', '\r':
		default:
			q.state = inUnquoted
		}
	case inUnquoted:
		if b == ',' || b == '\n' {
			q.state = fieldStart
		}
	case inQuoted:
		if b == '"' {
			q.state = quoteInQuoted
		}
	case quoteInQuoted:
		switch b {
		case '"':
			q.state = inQuoted
		case ',', '\n':
			q.state = fieldStart
		case '\r':
		default:
			// Lenient: the quote was literal and the field continues.
			q.state = inQuoted
		}
	}
}

// unterminated reports whether the input ended inside a quoted field.
func (q *quoteTracker) unterminated() bool {
	return q.eof && q.state == inQuoted
}
