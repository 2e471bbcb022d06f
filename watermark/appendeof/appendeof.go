// Package appendeof implements the built-in watermarking method: an
// authenticated record appended after the document's final %%EOF. The
// body of the PDF is left untouched, so the result stays valid for
// every conforming reader.
//
// Record layout, all UTF-8:
//
//	<original PDF bytes>
//	%%WM-APPEND-EOF:v1
//	<base64url(JSON {"v":1,"alg":"HMAC-SHA256","mac":"<hex>","secret":"<b64>"})>
//
// The MAC covers "wm:append-eof:v1:" + secret bytes under a key
// stretched from the caller's key string.
package appendeof

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

const (
	methodName = "append-eof"

	keyIterations = 4096
	keyLength     = 32
)

var (
	magic   = []byte("\n%%WM-APPEND-EOF:v1\n")
	macCtx  = []byte("wm:append-eof:v1:")
	keySalt = []byte("pdfmark/append-eof")
)

type payload struct {
	V      int    `json:"v"`
	Alg    string `json:"alg"`
	MAC    string `json:"mac"`
	Secret string `json:"secret"`
}

// Method appends and recovers authenticated EOF records. The zero
// value is not usable; call New.
type Method struct{}

func New() *Method { return &Method{} }

func (*Method) Name() string { return methodName }

func (*Method) Usage() string {
	return "Appends an HMAC-SHA256 authenticated watermark record after the PDF EOF marker. " +
		"Requires a non-empty key; position is accepted and ignored."
}

func (m *Method) AddWatermark(ctx context.Context, pdf source.Source, secret string, opts watermark.Options) ([]byte, error) {
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
	if opts.Key == "" {
		return nil, fmt.Errorf("append-eof: key must not be empty: %w", watermark.ErrInvalidKey)
	}

	record, err := buildRecord(secret, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("append-eof: encode payload: %w", err)
	}

	out := make([]byte, 0, len(data)+len(magic)+len(record)+2)
	out = append(out, data...)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, magic...)
	out = append(out, record...)
	out = append(out, '\n')
	return out, nil
}

func (m *Method) ReadSecret(ctx context.Context, pdf source.Source, opts watermark.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return "", err
	}
	if opts.Key == "" {
		return "", fmt.Errorf("append-eof: key must not be empty: %w", watermark.ErrInvalidKey)
	}

	idx := bytes.LastIndex(data, magic)
	if idx < 0 {
		return "", fmt.Errorf("append-eof: no record marker: %w", watermark.ErrSecretNotFound)
	}
	start := idx + len(magic)
	end := bytes.IndexByte(data[start:], '\n')
	record := data[start:]
	if end >= 0 {
		record = data[start : start+end]
	}
	record = bytes.TrimSpace(record)
	if len(record) == 0 {
		return "", fmt.Errorf("append-eof: marker with empty payload: %w", watermark.ErrSecretNotFound)
	}

	raw, err := base64.URLEncoding.DecodeString(string(record))
	if err != nil {
		return "", fmt.Errorf("append-eof: undecodable payload: %w", watermark.ErrSecretNotFound)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", fmt.Errorf("append-eof: malformed payload: %w", watermark.ErrSecretNotFound)
	}
	if p.V != 1 {
		return "", fmt.Errorf("append-eof: unsupported payload version %d: %w", p.V, watermark.ErrSecretNotFound)
	}
	if p.Alg != "HMAC-SHA256" {
		return "", fmt.Errorf("append-eof: unsupported MAC algorithm %q: %w", p.Alg, watermark.ErrMalformed)
	}

	secretBytes, err := base64.StdEncoding.DecodeString(p.Secret)
	if err != nil {
		return "", fmt.Errorf("append-eof: invalid secret field: %w", watermark.ErrSecretNotFound)
	}
	macBytes, err := hex.DecodeString(p.MAC)
	if err != nil {
		return "", fmt.Errorf("append-eof: invalid mac field: %w", watermark.ErrSecretNotFound)
	}

	expected := computeMAC(secretBytes, opts.Key)
	if !hmac.Equal(macBytes, expected) {
		return "", fmt.Errorf("append-eof: record does not authenticate: %w", watermark.ErrInvalidKey)
	}
	return string(secretBytes), nil
}

// Applicable is true for anything that loads as a PDF: appending after
// EOF works regardless of the document's internal structure.
func (m *Method) Applicable(_ context.Context, pdf source.Source, _ watermark.Options) bool {
	_, err := source.LoadPDF(pdf)
	return err == nil
}

func buildRecord(secret, key string) ([]byte, error) {
	secretBytes := []byte(secret)
	p := payload{
		V:      1,
		Alg:    "HMAC-SHA256",
		MAC:    hex.EncodeToString(computeMAC(secretBytes, key)),
		Secret: base64.StdEncoding.EncodeToString(secretBytes),
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.URLEncoding.EncodedLen(len(raw)))
	base64.URLEncoding.Encode(out, raw)
	return out, nil
}

func computeMAC(secretBytes []byte, key string) []byte {
	derived := pbkdf2.Key([]byte(key), keySalt, keyIterations, keyLength, sha256.New)
	h := hmac.New(sha256.New, derived)
	h.Write(macCtx)
	h.Write(secretBytes)
	return h.Sum(nil)
}
