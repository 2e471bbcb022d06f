package inline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/wudi/pdfmark/watermark"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

func TestRoundTrip(t *testing.T) {
	m := New()
	ctx := context.Background()

	out, err := m.AddWatermark(ctx, samplePDF, "hello", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	payload, err := m.ReadSecret(ctx, out, watermark.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded struct {
		Secret      string  `json:"secret"`
		IntendedFor *string `json:"intended_for"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.Secret != "hello" || decoded.IntendedFor != nil {
		t.Fatalf("payload = %s", payload)
	}
}

func TestMarkerInsertedBeforeEOF(t *testing.T) {
	out, err := New().AddWatermark(context.Background(), samplePDF, "x", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	markerAt := bytes.Index(out, startMarker)
	eofAt := bytes.LastIndex(out, []byte("%%EOF"))
	if markerAt < 0 || eofAt < 0 || markerAt > eofAt {
		t.Fatalf("marker at %d, EOF at %d: marker must precede the last EOF", markerAt, eofAt)
	}
}

func TestJSONSecretEmbeddedVerbatim(t *testing.T) {
	m := New()
	ctx := context.Background()
	secret := `{"secret":"s","intended_for":"alice"}`

	out, err := m.AddWatermark(ctx, samplePDF, secret, watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	got, err := m.ReadSecret(ctx, out, watermark.Options{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != secret {
		t.Fatalf("payload = %q, want the original JSON object", got)
	}
}

func TestDocumentWithoutEOF(t *testing.T) {
	m := New()
	ctx := context.Background()
	noEOF := []byte("%PDF-1.4\n1 0 obj\nendobj\n")

	out, err := m.AddWatermark(ctx, noEOF, "x", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatal("a fresh EOF must be appended")
	}
	if _, err := m.ReadSecret(ctx, out, watermark.Options{}); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestMissingWatermark(t *testing.T) {
	_, err := New().ReadSecret(context.Background(), samplePDF, watermark.Options{})
	if !errors.Is(err, watermark.ErrSecretNotFound) {
		t.Fatalf("error = %v, want ErrSecretNotFound", err)
	}
}

func TestDeterministic(t *testing.T) {
	m := New()
	ctx := context.Background()
	a, err := m.AddWatermark(ctx, samplePDF, "same", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := m.AddWatermark(ctx, samplePDF, "same", watermark.Options{})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("embedding must be deterministic")
	}
}
