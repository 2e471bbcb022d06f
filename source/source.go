// Package source normalizes the various ways a caller may hand us a PDF
// document into an in-memory byte slice.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Source is anything accepted as a PDF input: a []byte buffer, a string
// file path, an io.Reader, or an *os.File. Load normalizes all of them.
type Source = any

// ErrInvalidSource reports a source that is none of the supported kinds
// or a path that could not be read.
var ErrInvalidSource = errors.New("source: unsupported pdf source")

// ErrNotPDF reports bytes that do not carry the %PDF- header.
var ErrNotPDF = errors.New("source: missing %PDF header")

var pdfHeader = []byte("%PDF-")

// Load normalizes src into raw bytes. Byte slices are returned as-is,
// paths are read fully in a single filesystem read, and readers are
// drained. Anything else fails with ErrInvalidSource.
func Load(src Source) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidSource)
	case []byte:
		return v, nil
	case string:
		data, err := os.ReadFile(v)
		if err != nil {
			return nil, fmt.Errorf("%w: read %q: %v", ErrInvalidSource, v, err)
		}
		return data, nil
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("%w: drain reader: %v", ErrInvalidSource, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSource, src)
	}
}

// LoadPDF is Load plus a lightweight header check. Watermarking methods
// use it so they never operate on something that is not a PDF; the
// exploration path deliberately uses Load alone and degrades instead.
func LoadPDF(src Source) ([]byte, error) {
	data, err := Load(src)
	if err != nil {
		return nil, err
	}
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}
	return data, nil
}

// IsPDF reports whether data starts with the PDF magic.
func IsPDF(data []byte) bool { return bytes.HasPrefix(data, pdfHeader) }
