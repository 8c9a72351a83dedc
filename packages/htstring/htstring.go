// Package htstring is the convenience surface over the template parser: it
// turns interleaved string/value templates into safe document trees and
// renders trees back to markup. Dynamic values can change document content
// but never document structure, unless explicitly wrapped with Raw.
package htstring

import (
	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/parser"
	"hts-go/packages/htstring/src/tstring"
)

// HTML builds a template from literal segments and slot values and parses
// it in one step. Segments and values interleave: segments[0], values[0],
// segments[1], ..., segments[len(values)].
func HTML(segments []string, values ...any) (nodes.Node, error) {
	tpl, err := tstring.New(segments, values...)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tpl)
}

// Parse parses an already-built template value.
func Parse(tpl *tstring.Template) (nodes.Node, error) {
	return parser.Parse(tpl)
}

// Render serializes a document tree to markup.
func Render(node nodes.Node) string {
	return nodes.Serialize(node)
}

// Raw marks s as trusted markup that is re-tokenized instead of escaped
// when interpolated in text position.
func Raw(s string) tstring.Raw {
	return tstring.Raw(s)
}
