// Package explore builds a deterministic descriptive tree of a PDF's
// low-level object structure. Two mutually exclusive strategies feed
// it: a structural walk over the cross-reference table when a parser
// can open the document, and a regex scan over the raw bytes otherwise.
package explore

import (
	"context"

	"github.com/wudi/pdfmark/observability"
	"github.com/wudi/pdfmark/source"
)

// Builder orchestrates loading, strategy selection, and tree assembly.
type Builder struct {
	structural Structural
	log        observability.Logger
}

type Option func(*Builder)

// WithStructural replaces the default pdfcpu-backed explorer. Passing
// nil disables structural exploration so every call takes the fallback
// scan; tests use this to exercise the degraded path deterministically.
func WithStructural(s Structural) Option {
	return func(b *Builder) { b.structural = s }
}

// WithLogger injects the logger that records swallowed structural
// failures. Defaults to a no-op.
func WithLogger(l observability.Logger) Option {
	return func(b *Builder) { b.log = l }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{structural: NewStructural(), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Explore loads src and returns the root Document node. Exploration
// never fails for malformed PDF content: a structural failure of any
// kind is logged and degrades to the raw scan over the original bytes.
// Only an unusable source fails, with source.ErrInvalidSource.
//
// For byte-identical input, and with the structural strategy held
// constant, the output tree is field-for-field identical across calls.
func (b *Builder) Explore(ctx context.Context, src source.Source) (*Node, error) {
	data, err := source.Load(src)
	if err != nil {
		return nil, err
	}

	root := newDocumentNode(data)

	if b.structural != nil {
		nodes, err := b.structural.Explore(ctx, data)
		if err == nil {
			root.Children = append(root.Children, nodes...)
			return root, nil
		}
		b.log.Warn("structural exploration failed, falling back to raw scan",
			observability.Error("err", err),
			observability.Int("size", len(data)))
	}

	root.Children = append(root.Children, scanObjects(data)...)
	return root, nil
}
