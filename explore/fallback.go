package explore

import (
	"regexp"
	"strconv"

	"github.com/wudi/pdfmark/digest"
)

// The fallback scanner approximates the object inventory by pattern
// matching alone. It is used when no structural explorer is configured
// and whenever structural exploration fails, and it never fails itself:
// malformed input simply yields fewer nodes.
var (
	objHeaderRE = regexp.MustCompile(`(?m)^(\d+)\s+(\d+)\s+obj\b`)
	endObjRE    = regexp.MustCompile(`\bendobj\b`)
	typeNameRE  = regexp.MustCompile(`/Type\s*/([A-Za-z]+)`)
)

// scanObjects extracts object nodes from raw bytes and interleaves a
// lightweight page placeholder immediately before every object whose
// detected type is Page.
func scanObjects(data []byte) []*Node {
	headers := objHeaderRE.FindAllSubmatchIndex(data, -1)

	objects := make([]*Node, 0, len(headers))
	for _, m := range headers {
		num, _ := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, _ := strconv.Atoi(string(data[m[4]:m[5]]))

		// Body runs from the header to the next word-bounded endobj;
		// an unterminated object degrades to an empty body.
		body := data[m[1]:m[1]]
		if loc := endObjRE.FindIndex(data[m[1]:]); loc != nil {
			body = data[m[1] : m[1]+loc[0]]
		}

		typ := "Object"
		if tm := typeNameRE.FindSubmatch(body); tm != nil {
			typ = string(tm[1])
		}

		// The fallback path hashes every body, empty ones included.
		objects = append(objects, newFallbackObject(num, gen, typ, digest.SHA1Hex(body)))
	}

	children := make([]*Node, 0, len(objects))
	pageIndex := 0
	for _, obj := range objects {
		if obj.Type == "Page" {
			children = append(children, newFallbackPage(pageIndex, obj.ID))
			pageIndex++
		}
		children = append(children, obj)
	}
	return children
}
