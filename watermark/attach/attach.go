// Package attach embeds the secret as a framed payload inside an
// embedded file (/Names -> /EmbeddedFiles), the PDF-native attachment
// mechanism. Extraction prefers the structural route and falls back to
// a raw byte scan for documents whose name tree was damaged.
package attach

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/crypto/pbkdf2"

	"github.com/wudi/pdfmark/digest"
	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

const (
	methodName  = "embed-attachment"
	framePrefix = "WM3"

	keyIterations = 4096
	keyLength     = 32
)

var (
	keySalt = []byte("pdfmark/embed-attachment")
	frameRE = regexp.MustCompile(`WM3\|[A-Za-z0-9_-]+\|[0-9a-f]*`)
)

type payload struct {
	V         int    `json:"v"`
	Algo      string `json:"algo"`
	DocSHA256 string `json:"doc_sha256"`
	Secret    string `json:"secret"`
	TS        int64  `json:"ts"`
}

type Method struct {
	conf *model.Configuration
	now  func() time.Time
}

func New() *Method {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Method{conf: conf, now: time.Now}
}

func (*Method) Name() string { return methodName }

func (*Method) Usage() string {
	return "Embeds a framed JSON payload as an embedded file under /EmbeddedFiles. " +
		"Key adds an HMAC-SHA256 over the payload; readout does not require it."
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

	docSHA := sha256.Sum256(data)
	body, err := json.Marshal(payload{
		V:         1,
		Algo:      methodName,
		DocSHA256: hex.EncodeToString(docSHA[:]),
		Secret:    secret,
		TS:        m.now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("attach: encode payload: %w", err)
	}
	mac := macHex(body, opts.Key)
	frame := framePrefix + "|" + base64.RawURLEncoding.EncodeToString(body) + "|" + mac

	short := mac
	if short == "" {
		short = digest.SHA1Hex(body)
	}
	filename := fmt.Sprintf("wm_%s_%s.dat", short[:8], hex.EncodeToString(docSHA[:])[:10])

	dir, err := os.MkdirTemp("", "pdfmark-attach-")
	if err != nil {
		return nil, fmt.Errorf("attach: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inFile := filepath.Join(dir, "in.pdf")
	outFile := filepath.Join(dir, "out.pdf")
	payloadFile := filepath.Join(dir, filename)
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("attach: stage input: %w", err)
	}
	if err := os.WriteFile(payloadFile, []byte(frame), 0o600); err != nil {
		return nil, fmt.Errorf("attach: stage payload: %w", err)
	}
	if err := api.AddAttachmentsFile(inFile, outFile, []string{payloadFile}, false, m.conf); err != nil {
		return nil, fmt.Errorf("attach: embed file: %w", err)
	}
	out, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("attach: collect output: %w", err)
	}
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

	if secret, err := m.readStructural(data, opts.Key); err == nil {
		return secret, nil
	} else if isAuthFailure(err) {
		return "", err
	}

	// Raw fallback: look for frames directly in the byte stream.
	frames := frameRE.FindAll(data, -1)
	for i := len(frames) - 1; i >= 0; i-- {
		secret, err := parseFrame(string(frames[i]), opts.Key)
		if err == nil {
			return secret, nil
		}
		if isAuthFailure(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("attach: no embedded watermark payload: %w", watermark.ErrSecretNotFound)
}

func (m *Method) readStructural(data []byte, key string) (string, error) {
	dir, err := os.MkdirTemp("", "pdfmark-attach-")
	if err != nil {
		return "", fmt.Errorf("attach: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inFile := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return "", fmt.Errorf("attach: stage input: %w", err)
	}
	names, err := api.Attachments(bytes.NewReader(data), m.conf)
	if err != nil || len(names) == 0 {
		return "", fmt.Errorf("attach: no attachments: %w", watermark.ErrSecretNotFound)
	}

	outDir := filepath.Join(dir, "extracted")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", fmt.Errorf("attach: extract dir: %w", err)
	}
	if err := api.ExtractAttachmentsFile(inFile, outDir, nil, m.conf); err != nil {
		return "", fmt.Errorf("attach: extract attachments: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", fmt.Errorf("attach: list extracted: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			continue
		}
		secret, err := parseFrame(string(bytes.TrimSpace(content)), key)
		if err == nil {
			return secret, nil
		}
		if isAuthFailure(err) {
			return "", err
		}
	}
	return "", fmt.Errorf("attach: no attachment carries a payload frame: %w", watermark.ErrSecretNotFound)
}

// Applicable requires a document the structural library can open,
// since embedding rewrites the name tree.
func (m *Method) Applicable(_ context.Context, pdf source.Source, _ watermark.Options) bool {
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return false
	}
	_, err = api.ReadContext(bytes.NewReader(data), m.conf)
	return err == nil
}

func parseFrame(frame, key string) (string, error) {
	parts := strings.Split(frame, "|")
	if len(parts) != 3 || parts[0] != framePrefix {
		return "", fmt.Errorf("attach: not a payload frame: %w", watermark.ErrMalformed)
	}
	body, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("attach: undecodable frame body: %w", watermark.ErrMalformed)
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("attach: malformed frame body: %w", watermark.ErrMalformed)
	}
	if p.V != 1 || p.Algo != methodName {
		return "", fmt.Errorf("attach: foreign frame %q v%d: %w", p.Algo, p.V, watermark.ErrMalformed)
	}
	if key != "" && parts[2] != "" && !hmac.Equal([]byte(parts[2]), []byte(macHex(body, key))) {
		return "", fmt.Errorf("attach: payload does not authenticate: %w", watermark.ErrInvalidKey)
	}
	return p.Secret, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, watermark.ErrInvalidKey)
}

func macHex(body []byte, key string) string {
	if key == "" {
		return ""
	}
	derived := pbkdf2.Key([]byte(key), keySalt, keyIterations, keyLength, sha256.New)
	h := hmac.New(sha256.New, derived)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
