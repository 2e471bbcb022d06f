// Package inline implements a simple, deterministic keyless method: a
// base64 JSON payload between comment markers inserted just before the
// document's last %%EOF. Comment lines are ignored by PDF readers, so
// the document stays valid.
package inline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

const methodName = "inline-b64"

var (
	startMarker = []byte("\n%WM-INLINE-START\n")
	endMarker   = []byte("\n%WM-INLINE-END\n")
	eofMarker   = []byte("%%EOF")
)

// Method carries no state; one instance serves all calls.
type Method struct{}

func New() *Method { return &Method{} }

func (*Method) Name() string { return methodName }

func (*Method) Usage() string {
	return "Embeds a base64 JSON payload between comment markers before the last %%EOF. " +
		"Deterministic; ignores key and position."
}

func (m *Method) AddWatermark(ctx context.Context, pdf source.Source, secret string, _ watermark.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		return nil, watermark.ErrEmptySecret
	}

	body, err := payloadJSON(secret)
	if err != nil {
		return nil, fmt.Errorf("inline: encode payload: %w", err)
	}
	marker := make([]byte, 0, len(startMarker)+base64.StdEncoding.EncodedLen(len(body))+len(endMarker))
	marker = append(marker, startMarker...)
	marker = append(marker, []byte(base64.StdEncoding.EncodeToString(body))...)
	marker = append(marker, endMarker...)

	// Insert before the last %%EOF; a document without one gets the
	// marker appended together with a fresh EOF line.
	if at := bytes.LastIndex(data, eofMarker); at >= 0 {
		out := make([]byte, 0, len(data)+len(marker))
		out = append(out, data[:at]...)
		out = append(out, marker...)
		out = append(out, data[at:]...)
		return out, nil
	}
	out := append(append([]byte{}, data...), marker...)
	return append(out, []byte("\n%%EOF\n")...), nil
}

func (m *Method) ReadSecret(ctx context.Context, pdf source.Source, _ watermark.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return "", err
	}

	start := bytes.LastIndex(data, startMarker)
	if start < 0 {
		return "", fmt.Errorf("inline: start marker not found: %w", watermark.ErrSecretNotFound)
	}
	payloadAt := start + len(startMarker)
	end := bytes.Index(data[payloadAt:], endMarker)
	if end < 0 {
		return "", fmt.Errorf("inline: end marker not found: %w", watermark.ErrSecretNotFound)
	}

	raw, err := base64.StdEncoding.DecodeString(string(data[payloadAt : payloadAt+end]))
	if err != nil {
		return "", fmt.Errorf("inline: base64 decode: %w", watermark.ErrMalformed)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("inline: payload is not valid UTF-8: %w", watermark.ErrMalformed)
	}
	// The payload is returned as its JSON text; callers unpack it.
	return string(raw), nil
}

func (m *Method) Applicable(_ context.Context, pdf source.Source, _ watermark.Options) bool {
	data, err := source.Load(pdf)
	return err == nil && source.IsPDF(data)
}

// payloadJSON wraps secret into the canonical payload object. A secret
// that already is a JSON object is embedded verbatim.
func payloadJSON(secret string) ([]byte, error) {
	trimmed := bytes.TrimSpace([]byte(secret))
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return trimmed, nil
	}
	return json.Marshal(struct {
		Secret      string  `json:"secret"`
		IntendedFor *string `json:"intended_for"`
	}{Secret: secret})
}
