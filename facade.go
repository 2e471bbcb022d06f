package pdfmark

import (
	"context"

	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

// The facade operations resolve their method reference and forward.
// No validation, retry, or error translation happens here: whatever a
// method fails with surfaces to the caller unchanged. A wrong secret
// silently returned would be worse than a loud failure.

// Apply embeds secret into pdf using the referenced method and returns
// the new PDF bytes.
func (r *Registry) Apply(ctx context.Context, ref MethodRef, pdf source.Source, secret string, opts watermark.Options) ([]byte, error) {
	m, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return m.AddWatermark(ctx, pdf, secret, opts)
}

// Read extracts the secret embedded in pdf by the referenced method.
func (r *Registry) Read(ctx context.Context, ref MethodRef, pdf source.Source, opts watermark.Options) (string, error) {
	m, err := r.Resolve(ref)
	if err != nil {
		return "", err
	}
	return m.ReadSecret(ctx, pdf, opts)
}

// Applicable reports whether the referenced method can embed into pdf.
// It is the pre-flight guard before Apply; the only possible error is
// an unresolvable method reference.
func (r *Registry) Applicable(ctx context.Context, ref MethodRef, pdf source.Source, opts watermark.Options) (bool, error) {
	m, err := r.Resolve(ref)
	if err != nil {
		return false, err
	}
	return m.Applicable(ctx, pdf, opts), nil
}
