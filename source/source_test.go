package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBytesPassthrough(t *testing.T) {
	in := []byte("%PDF-1.4\n%%EOF\n")
	out, err := Load(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("bytes not returned as-is")
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	want := []byte("%PDF-1.7\n1 0 obj\nendobj\n%%EOF\n")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("path read mismatch: %q", got)
	}
}

func TestLoadFromReader(t *testing.T) {
	want := []byte("%PDF-1.4\n")
	got, err := Load(bytes.NewReader(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("reader drain mismatch: %q", got)
	}
}

func TestLoadRejectsUnsupportedTypes(t *testing.T) {
	for _, src := range []Source{nil, 42, struct{}{}, 3.14} {
		if _, err := Load(src); !errors.Is(err, ErrInvalidSource) {
			t.Fatalf("Load(%T) error = %v, want ErrInvalidSource", src, err)
		}
	}
}

func TestLoadRejectsMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.pdf"))
	if !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("error = %v, want ErrInvalidSource", err)
	}
}

func TestLoadPDFHeaderCheck(t *testing.T) {
	if _, err := LoadPDF([]byte("not a pdf")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("error = %v, want ErrNotPDF", err)
	}
	if _, err := LoadPDF([]byte("%PDF-1.4\n%%EOF\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
