package explore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/wudi/pdfmark/digest"
)

// Structural produces the full-fidelity node inventory when a PDF
// parser can open the document. Any returned error aborts structural
// exploration entirely; the builder then falls back to the raw scan.
// Implementations must not return partial results alongside an error.
type Structural interface {
	Explore(ctx context.Context, data []byte) ([]*Node, error)
}

// NewStructural returns the default explorer backed by pdfcpu, opened
// in relaxed validation mode so that mildly damaged documents still
// take the rich path.
func NewStructural() Structural {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfcpuExplorer{conf: conf}
}

type pdfcpuExplorer struct {
	conf *model.Configuration
}

func (e *pdfcpuExplorer) Explore(ctx context.Context, data []byte) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The pdfcpu context is an in-memory snapshot with no handle to
	// release; it is discarded when this call returns.
	pctx, err := api.ReadContext(bytes.NewReader(data), e.conf)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("resolve page tree: %w", err)
	}

	pbs, err := pctx.PageBoundaries(nil)
	if err != nil {
		return nil, fmt.Errorf("page boundaries: %w", err)
	}
	var nodes []*Node
	for i := 0; i < pctx.PageCount; i++ {
		mb := pbs[i].MediaBox()
		if mb == nil {
			return nil, fmt.Errorf("page %d media box: missing", i)
		}
		bbox := []float64{mb.LL.X, mb.LL.Y, mb.UR.X, mb.UR.Y}
		nodes = append(nodes, newStructuralPage(i, bbox))
	}

	tableLen := 0
	if pctx.XRefTable != nil && pctx.XRefTable.Size != nil {
		tableLen = *pctx.XRefTable.Size
	}
	for xref := 1; xref < tableLen; xref++ {
		repr, isStream := objectString(pctx, xref)

		typ := "Object"
		var sha *string
		if repr != "" {
			if tm := typeNameRE.FindSubmatch([]byte(repr)); tm != nil {
				typ = string(tm[1])
			}
			sum := digest.SHA1Hex([]byte(repr))
			sha = &sum
		}
		nodes = append(nodes, newStructuralObject(xref, typ, isStream, sha))
	}
	return nodes, nil
}

// objectString fetches the textual representation of one xref entry.
// Free, missing, or unreadable entries degrade to the empty string.
func objectString(pctx *model.Context, xref int) (string, bool) {
	entry, ok := pctx.XRefTable.Table[xref]
	if !ok || entry == nil || entry.Free {
		return "", false
	}
	obj, err := pctx.Dereference(*types.NewIndirectRef(xref, 0))
	if err != nil || obj == nil {
		return "", false
	}
	_, isStream := obj.(types.StreamDict)
	return obj.PDFString(), isStream
}
