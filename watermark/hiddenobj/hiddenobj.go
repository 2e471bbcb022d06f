// Package hiddenobj hides the secret in an orphan stream object added
// through an incremental update: a new indirect object nothing in the
// document references, registered in an appended xref section so the
// file stays a conforming PDF. Readers ignore unreferenced objects;
// the secret travels invisibly with the file.
package hiddenobj

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"

	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

const methodName = "hidden-object"

var (
	objHeaderRE = regexp.MustCompile(`(?m)^(\d+)\s+(\d+)\s+obj\b`)
	startxrefRE = regexp.MustCompile(`startxref\s+(\d+)`)
	rootRefRE   = regexp.MustCompile(`/Root\s+(\d+)\s+(\d+)\s+R`)
	sizeRE      = regexp.MustCompile(`/Size\s+(\d+)`)
	hiddenRE    = regexp.MustCompile(`/Subtype\s*/WMHidden[^>]*>>\s*stream\r?\n([A-Za-z0-9_=-]+)\r?\nendstream`)
)

type Method struct{}

func New() *Method { return &Method{} }

func (*Method) Name() string { return methodName }

func (*Method) Usage() string {
	return "Stores the secret in an unreferenced stream object appended as an incremental " +
		"update. Keyless; position is ignored."
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

	prevXref, ok := lastStartxref(data)
	if !ok {
		return nil, fmt.Errorf("hidden-object: document has no startxref; cannot append an update")
	}
	rootRef, ok := lastRootRef(data)
	if !ok {
		return nil, fmt.Errorf("hidden-object: document has no /Root reference")
	}
	objNum := nextObjectNumber(data)
	payload := base64.URLEncoding.EncodeToString([]byte(secret))

	buf := bytes.NewBuffer(make([]byte, 0, len(data)+len(payload)+256))
	buf.Write(data)
	if data[len(data)-1] != '\n' {
		buf.WriteByte('\n')
	}

	objOffset := buf.Len()
	fmt.Fprintf(buf, "%d 0 obj\n<< /Subtype /WMHidden /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		objNum, len(payload), payload)

	xrefOffset := buf.Len()
	fmt.Fprintf(buf, "xref\n%d 1\n%010d 00000 n \n", objNum, objOffset)
	fmt.Fprintf(buf, "trailer\n<< /Size %d /Root %s /Prev %d >>\n", objNum+1, rootRef, prevXref)
	fmt.Fprintf(buf, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes(), nil
}

func (m *Method) ReadSecret(ctx context.Context, pdf source.Source, _ watermark.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return "", err
	}

	matches := hiddenRE.FindAllSubmatch(data, -1)
	if len(matches) == 0 {
		return "", fmt.Errorf("hidden-object: no hidden stream object: %w", watermark.ErrSecretNotFound)
	}
	// Re-watermarking appends another update; the newest object wins.
	payload := matches[len(matches)-1][1]
	secret, err := base64.URLEncoding.DecodeString(string(payload))
	if err != nil {
		return "", fmt.Errorf("hidden-object: undecodable payload: %w", watermark.ErrMalformed)
	}
	return string(secret), nil
}

func (m *Method) Applicable(_ context.Context, pdf source.Source, _ watermark.Options) bool {
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return false
	}
	_, hasXref := lastStartxref(data)
	_, hasRoot := lastRootRef(data)
	return hasXref && hasRoot
}

func lastStartxref(data []byte) (int, bool) {
	ms := startxrefRE.FindAllSubmatch(data, -1)
	if len(ms) == 0 {
		return 0, false
	}
	off, err := strconv.Atoi(string(ms[len(ms)-1][1]))
	if err != nil {
		return 0, false
	}
	return off, true
}

func lastRootRef(data []byte) (string, bool) {
	ms := rootRefRE.FindAllSubmatch(data, -1)
	if len(ms) == 0 {
		return "", false
	}
	m := ms[len(ms)-1]
	return fmt.Sprintf("%s %s R", m[1], m[2]), true
}

// nextObjectNumber picks a number above every object header and every
// declared /Size, so the new entry cannot collide.
func nextObjectNumber(data []byte) int {
	next := 1
	for _, m := range objHeaderRE.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n+1 > next {
			next = n + 1
		}
	}
	for _, m := range sizeRE.FindAllSubmatch(data, -1) {
		if n, err := strconv.Atoi(string(m[1])); err == nil && n > next {
			next = n
		}
	}
	return next
}
