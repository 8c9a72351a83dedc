package nodes

import (
	"strings"

	"hts-go/packages/htstring/src/schema"
)

// Serialize emits the markup string for a tree built by the parser (or
// constructed through the package constructors). It is total over valid
// trees: re-parsing its output yields a structurally equivalent tree, though
// entity-encoding choices may normalize byte-for-byte content.
func Serialize(node Node) string {
	v := &serializerVisitor{}
	if s, ok := node.Visit(v, "").(string); ok {
		return s
	}
	return ""
}

// serializerVisitor walks the tree depth-first. The context carries the
// enclosing raw-text element name, or "" in normal content.
type serializerVisitor struct{}

func (s *serializerVisitor) VisitText(text *Text, context any) any {
	if rawTag, ok := context.(string); ok && rawTag != "" {
		return schema.EscapeRawText(rawTag, text.Value)
	}
	return schema.EscapeText(text.Value)
}

func (s *serializerVisitor) VisitComment(comment *Comment, context any) any {
	return "<!--" + schema.EscapeComment(comment.Value) + "-->"
}

func (s *serializerVisitor) VisitDoctype(doctype *Doctype, context any) any {
	return "<!DOCTYPE " + doctype.Value + ">"
}

func (s *serializerVisitor) VisitElement(element *Element, context any) any {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(element.Name)
	for _, attr := range element.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		if attr.HasValue {
			sb.WriteString(`="`)
			sb.WriteString(schema.EscapeAttribute(attr.Value, '"'))
			sb.WriteByte('"')
		}
	}
	if element.IsVoid() {
		sb.WriteString(" />")
		return sb.String()
	}
	sb.WriteByte('>')
	childContext := ""
	if schema.IsRawTextElement(element.Name) {
		childContext = element.Name
	}
	for _, part := range VisitAll(s, element.Children, childContext) {
		sb.WriteString(part.(string))
	}
	sb.WriteString("</")
	sb.WriteString(element.Name)
	sb.WriteByte('>')
	return sb.String()
}

func (s *serializerVisitor) VisitFragment(fragment *Fragment, context any) any {
	var sb strings.Builder
	for _, part := range VisitAll(s, fragment.Children, context) {
		sb.WriteString(part.(string))
	}
	return sb.String()
}
