// Package gomp lowers parsed document trees into gomponents nodes so they
// can be composed with gomponents-based views and rendered through the
// gomponents writer pipeline.
package gomp

import (
	g "maragu.dev/gomponents"

	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/schema"
)

// Lower converts a tree into a gomponents Node. Text content is passed as
// unescaped values and re-escaped by the gomponents renderer; comments and
// doctypes are carried through their serialized form, which gomponents has
// no node kind for.
func Lower(node nodes.Node) g.Node {
	if out, ok := node.Visit(&lowerVisitor{}, nil).(g.Node); ok {
		return out
	}
	return nil
}

type lowerVisitor struct{}

func (l *lowerVisitor) VisitText(text *nodes.Text, context any) any {
	if rawTag, ok := context.(string); ok && rawTag != "" {
		// raw-text bodies are opaque; never entity-escape them
		return g.Raw(schema.EscapeRawText(rawTag, text.Value))
	}
	return g.Text(text.Value)
}

func (l *lowerVisitor) VisitComment(comment *nodes.Comment, context any) any {
	return g.Raw(nodes.Serialize(comment))
}

func (l *lowerVisitor) VisitDoctype(doctype *nodes.Doctype, context any) any {
	return g.Raw(nodes.Serialize(doctype))
}

func (l *lowerVisitor) VisitElement(element *nodes.Element, context any) any {
	args := make([]g.Node, 0, len(element.Attrs)+len(element.Children))
	for _, attr := range element.Attrs {
		if attr.HasValue {
			args = append(args, g.Attr(attr.Name, attr.Value))
			continue
		}
		args = append(args, g.Attr(attr.Name))
	}
	childContext := ""
	if schema.IsRawTextElement(element.Name) {
		childContext = element.Name
	}
	for _, part := range nodes.VisitAll(l, element.Children, childContext) {
		if child, ok := part.(g.Node); ok && child != nil {
			args = append(args, child)
		}
	}
	return g.El(element.Name, args...)
}

func (l *lowerVisitor) VisitFragment(fragment *nodes.Fragment, context any) any {
	children := make([]g.Node, 0, len(fragment.Children))
	for _, part := range nodes.VisitAll(l, fragment.Children, nil) {
		if child, ok := part.(g.Node); ok && child != nil {
			children = append(children, child)
		}
	}
	return g.Group(children)
}
