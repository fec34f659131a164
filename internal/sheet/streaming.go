package sheet

// streaming.go provides readers that clean up uploaded text files on the fly.
//
//   - BOMSkippingReader: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel on Windows
//   - UTF8Sanitizer: Replaces invalid UTF-8 bytes with '?'
//   - LimitReader: Fails with ErrFileTooLarge once a byte limit is passed
//
// Use WrapText to apply the first two in the correct order.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader skips a leading UTF-8 BOM.
type BOMSkippingReader struct {
	reader  *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call peeks at the first three bytes
// and discards them when they are a BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.reader.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.reader.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.reader.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte
// sequence split across reads is held back until the next read completes it.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{reader: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place and returns the number of bytes to emit.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if data[read] < utf8.RuneSelf {
			data[write] = data[read]
			write++
			read++
			continue
		}

		rest := data[read:]
		if !atEOF && !utf8.FullRune(rest) {
			s.pending = append(s.pending, rest...)
			return write
		}

		r, size := utf8.DecodeRune(rest)
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], rest[:size])
		write += size
		read += size
	}
	return write
}

// WrapText wraps r with BOM skipping and UTF-8 sanitization.
// The BOM must be stripped before sanitization sees it.
func WrapText(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}

// ErrFileTooLarge is returned by LimitReader once more than its limit is read.
var ErrFileTooLarge = errors.New("file too large")

// LimitReader counts bytes read and fails once Max is exceeded.
// A Max of zero or less disables the limit.
type LimitReader struct {
	reader    io.Reader
	Max       int64
	BytesRead int64
}

// NewLimitReader creates a LimitReader.
func NewLimitReader(r io.Reader, max int64) *LimitReader {
	return &LimitReader{reader: r, Max: max}
}

// Read implements io.Reader.
func (r *LimitReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Max > 0 && r.BytesRead > r.Max {
		return n, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, r.Max)
	}
	return n, err
}
