package explore

import (
	"encoding/json"
	"fmt"

	"github.com/wudi/pdfmark/digest"
)

// Node is one entry in the descriptive tree produced by exploration:
// the document root, a page, or an indirect object. Nodes are built
// fresh on every exploration call and never mutated afterwards.
//
// Pointer fields encode presence: a nil field is absent from the JSON
// form. Object nodes are the exception for ContentSHA1, which is
// always serialized for them and becomes an explicit null when the
// object's textual representation was empty. The fallback scanner
// always stores a digest, even for empty bodies; the two conventions
// are deliberately kept distinct.
type Node struct {
	ID          string
	Type        string
	Size        *int
	Children    []*Node
	Index       *int
	BBox        []float64
	XrefHint    string
	Xref        *int
	Object      *int
	Generation  *int
	IsStream    *bool
	ContentSHA1 *string
}

// IsObject reports whether the node addresses an indirect object,
// either by xref index (structural) or by object/generation (fallback).
func (n *Node) IsObject() bool { return n.Xref != nil || n.Object != nil }

// MarshalJSON serializes exactly the keys the node kind carries.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{"id": n.ID, "type": n.Type}
	if n.Size != nil {
		m["size"] = *n.Size
	}
	if n.Children != nil {
		m["children"] = n.Children
	}
	if n.Index != nil {
		m["index"] = *n.Index
	}
	if n.BBox != nil {
		m["bbox"] = n.BBox
	}
	if n.XrefHint != "" {
		m["xref_hint"] = n.XrefHint
	}
	if n.Xref != nil {
		m["xref"] = *n.Xref
	}
	if n.Object != nil {
		m["object"] = *n.Object
	}
	if n.Generation != nil {
		m["generation"] = *n.Generation
	}
	if n.IsStream != nil {
		m["is_stream"] = *n.IsStream
	}
	if n.IsObject() {
		if n.ContentSHA1 != nil {
			m["content_sha1"] = *n.ContentSHA1
		} else {
			m["content_sha1"] = nil
		}
	}
	return json.Marshal(m)
}

func newDocumentNode(data []byte) *Node {
	size := len(data)
	return &Node{
		ID:       "pdf:" + digest.SHA1Hex(data),
		Type:     "Document",
		Size:     &size,
		Children: []*Node{},
	}
}

func newStructuralPage(index int, bbox []float64) *Node {
	i := index
	return &Node{
		ID:    fmt.Sprintf("page:%04d", index),
		Type:  "Page",
		Index: &i,
		BBox:  bbox,
	}
}

func newFallbackPage(index int, hint string) *Node {
	return &Node{
		ID:       fmt.Sprintf("page:%04d", index),
		Type:     "Page",
		XrefHint: hint,
	}
}

func newStructuralObject(xref int, typ string, isStream bool, sha *string) *Node {
	x := xref
	s := isStream
	return &Node{
		ID:          fmt.Sprintf("obj:%06d", xref),
		Type:        typ,
		Xref:        &x,
		IsStream:    &s,
		ContentSHA1: sha,
	}
}

func newFallbackObject(num, gen int, typ, sha string) *Node {
	n := num
	g := gen
	return &Node{
		ID:          fmt.Sprintf("obj:%06d:%05d", num, gen),
		Type:        typ,
		Object:      &n,
		Generation:  &g,
		ContentSHA1: &sha,
	}
}
