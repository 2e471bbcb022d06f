package explore

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"testing"
)

// buildSinglePagePDF assembles a minimal classic-xref document with one
// empty page, with byte-accurate offsets.
func buildSinglePagePDF() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("%PDF-1.7\n")

	off1 := buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	off2 := buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	off3 := buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 4\n")
	fmt.Fprintf(buf, "0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \n%010d 00000 n \n", off1, off2, off3)
	buf.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	fmt.Fprintf(buf, "%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func TestStructuralExplorerMinimalDocument(t *testing.T) {
	nodes, err := NewStructural().Explore(context.Background(), buildSinglePagePDF())
	if err != nil {
		t.Fatalf("structural exploration failed: %v", err)
	}

	if len(nodes) == 0 || nodes[0].ID != "page:0000" {
		t.Fatalf("expected leading page node, got %+v", nodes)
	}
	page := nodes[0]
	if page.Index == nil || *page.Index != 0 {
		t.Fatalf("page index = %v", page.Index)
	}
	if len(page.BBox) != 4 {
		t.Fatalf("bbox = %v, want 4 numbers", page.BBox)
	}
	if page.BBox[2] != 612 || page.BBox[3] != 792 {
		t.Fatalf("bbox = %v, want media box 612x792", page.BBox)
	}

	structuralID := regexp.MustCompile(`^obj:\d{6}$`)
	objects := 0
	for _, n := range nodes[1:] {
		if !structuralID.MatchString(n.ID) {
			t.Fatalf("unexpected node id %q after pages", n.ID)
		}
		if n.IsStream == nil {
			t.Fatalf("structural object %q missing is_stream", n.ID)
		}
		objects++
	}
	if objects != 3 {
		t.Fatalf("expected 3 xref object nodes, got %d", objects)
	}
}

func TestStructuralExplorerRejectsGarbage(t *testing.T) {
	if _, err := NewStructural().Explore(context.Background(), []byte("not a pdf at all")); err == nil {
		t.Fatal("expected open failure for non-PDF bytes")
	}
}
