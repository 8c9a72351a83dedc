package parser_test

import (
	"testing"

	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/parser"
	"hts-go/packages/htstring/src/tstring"
	"hts-go/packages/htstring/src/util"
)

// humanizeTemplate parses the template and flattens the tree into rows that
// diff cleanly with go-cmp.
func humanizeTemplate(t *testing.T, segments []string, values ...any) []any {
	t.Helper()
	node, err := parser.Parse(tstring.MustNew(segments, values...))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return humanizeNodes([]nodes.Node{node})
}

func humanizeNodes(list []nodes.Node) []any {
	h := &humanizer{}
	nodes.VisitAll(h, list, nil)
	return h.result
}

type humanizer struct {
	result  []any
	elDepth int
}

func (h *humanizer) VisitText(text *nodes.Text, context any) any {
	h.result = append(h.result, []any{"Text", text.Value, h.elDepth})
	return nil
}

func (h *humanizer) VisitComment(comment *nodes.Comment, context any) any {
	h.result = append(h.result, []any{"Comment", comment.Value, h.elDepth})
	return nil
}

func (h *humanizer) VisitDoctype(doctype *nodes.Doctype, context any) any {
	h.result = append(h.result, []any{"Doctype", doctype.Value, h.elDepth})
	return nil
}

func (h *humanizer) VisitElement(element *nodes.Element, context any) any {
	h.result = append(h.result, []any{"Element", element.Name, h.elDepth})
	for _, attr := range element.Attrs {
		if attr.HasValue {
			h.result = append(h.result, []any{"Attribute", attr.Name, attr.Value})
		} else {
			h.result = append(h.result, []any{"Flag", attr.Name})
		}
	}
	h.elDepth++
	nodes.VisitAll(h, element.Children, context)
	h.elDepth--
	return nil
}

func (h *humanizer) VisitFragment(fragment *nodes.Fragment, context any) any {
	h.result = append(h.result, []any{"Fragment", h.elDepth})
	h.elDepth++
	nodes.VisitAll(h, fragment.Children, context)
	h.elDepth--
	return nil
}

// expectParseError asserts that parsing fails with the given error kind.
func expectParseError(t *testing.T, kind util.ErrorKind, segments []string, values ...any) *util.ParseError {
	t.Helper()
	_, err := parser.Parse(tstring.MustNew(segments, values...))
	if err == nil {
		t.Fatalf("expected %s error, got none", kind)
	}
	got, ok := util.ErrorKindOf(err)
	if !ok {
		t.Fatalf("expected a ParseError, got %T: %v", err, err)
	}
	if got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
	pe, _ := err.(*util.ParseError)
	return pe
}
