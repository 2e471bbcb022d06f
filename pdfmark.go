// Package pdfmark embeds and recovers hidden secrets in PDF documents
// through pluggable watermarking methods, and exposes a deterministic
// exploration tree of a document's low-level object structure.
//
// The root package owns method lookup and dispatch. Concrete methods
// live under watermark/; the exploration engine lives in explore/.
package pdfmark

import "github.com/wudi/pdfmark/watermark/appendeof"

// DefaultRegistry returns a registry seeded with the single built-in
// method. Hosts register additional methods on top of it.
func DefaultRegistry() *Registry {
	return NewRegistry(appendeof.New())
}
