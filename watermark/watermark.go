// Package watermark defines the contract every watermarking method
// implements. Concrete methods live in the subpackages; lookup and
// dispatch live in the root pdfmark package.
package watermark

import (
	"context"

	"github.com/wudi/pdfmark/source"
)

// Options carries the optional embedding parameters. Position is a
// method-specific placement hint. Key authenticates keyed methods;
// keyless methods ignore it rather than failing.
type Options struct {
	Position string
	Key      string
}

// Method is a pluggable watermarking algorithm. Implementations are
// stateless and safe for concurrent use on distinct inputs; the
// registry holds one shared instance per name for the process lifetime.
type Method interface {
	// Name is the stable lowercase-hyphenated identifier the method
	// registers under.
	Name() string

	// Usage returns a short human-readable description of the method
	// and its parameters.
	Usage() string

	// AddWatermark embeds secret into pdf and returns a new, still
	// valid PDF. The input is not modified.
	AddWatermark(ctx context.Context, pdf source.Source, secret string, opts Options) ([]byte, error)

	// ReadSecret extracts the embedded secret. It fails with
	// ErrSecretNotFound when no recoverable watermark is present.
	ReadSecret(ctx context.Context, pdf source.Source, opts Options) (string, error)

	// Applicable reports whether the method can embed into pdf. It
	// returns false rather than failing when it cannot.
	Applicable(ctx context.Context, pdf source.Source, opts Options) bool
}
