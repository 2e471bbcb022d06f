package hiddenobj

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/pdfmark/watermark"
)

func buildClassicPDF() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Count 0 >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 3\n")
	fmt.Fprintf(buf, "0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \n", off1, off2)
	buf.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(buf, "%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	m := New()
	ctx := context.Background()
	pdf := buildClassicPDF()

	out, err := m.AddWatermark(ctx, pdf, "hidden treasure", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !bytes.HasPrefix(out, pdf) {
		t.Fatal("incremental update must leave the original bytes intact")
	}

	got, err := m.ReadSecret(ctx, out, watermark.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "hidden treasure" {
		t.Fatalf("recovered %q", got)
	}
}

func TestUpdateSectionShape(t *testing.T) {
	pdf := buildClassicPDF()
	out, err := New().AddWatermark(context.Background(), pdf, "s", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	added := out[len(pdf):]

	// Objects 1-2 exist and the old /Size is 3, so the orphan takes
	// number 3 and the new /Size is 4.
	if !bytes.Contains(added, []byte("3 0 obj")) {
		t.Fatalf("expected object 3 in update: %s", added)
	}
	for _, want := range []string{"xref\n3 1\n", "/Size 4", "/Root 1 0 R", "/Prev ", "startxref"} {
		if !bytes.Contains(added, []byte(want)) {
			t.Fatalf("update section missing %q:\n%s", want, added)
		}
	}
}

func TestNewestUpdateWins(t *testing.T) {
	m := New()
	ctx := context.Background()

	once, err := m.AddWatermark(ctx, buildClassicPDF(), "old", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	twice, err := m.AddWatermark(ctx, once, "new", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := m.ReadSecret(ctx, twice, watermark.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "new" {
		t.Fatalf("recovered %q, want the newest secret", got)
	}
}

func TestReadWithoutHiddenObject(t *testing.T) {
	_, err := New().ReadSecret(context.Background(), buildClassicPDF(), watermark.Options{})
	if !errors.Is(err, watermark.ErrSecretNotFound) {
		t.Fatalf("error = %v, want ErrSecretNotFound", err)
	}
}

func TestApplicable(t *testing.T) {
	m := New()
	ctx := context.Background()
	if !m.Applicable(ctx, buildClassicPDF(), watermark.Options{}) {
		t.Fatal("expected applicable for a classic-xref PDF")
	}
	// A PDF without startxref cannot take an incremental update.
	if m.Applicable(ctx, []byte("%PDF-1.4\n%%EOF\n"), watermark.Options{}) {
		t.Fatal("expected not applicable without startxref")
	}
}
