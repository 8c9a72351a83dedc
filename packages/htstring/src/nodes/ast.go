// Package nodes defines the document-tree model produced by the parser:
// a strict forest of elements, text, comments and doctypes under a single
// Fragment or Element root. Trees are never mutated after a parse completes
// and may be shared read-only across goroutines, including splicing the
// same subtree into multiple parent templates.
package nodes

import (
	"fmt"

	"hts-go/packages/htstring/src/schema"
)

// Node represents a node in the document tree
type Node interface {
	Visit(visitor Visitor, context any) any
}

// StructureError reports an attempt to build a tree that violates a model
// invariant, e.g. appending a child to a void element.
type StructureError struct {
	Msg string
}

// Error implements the error interface
func (e *StructureError) Error() string {
	return "structure error: " + e.Msg
}

// Text represents a text node. Value holds already-decoded, unescaped
// content; escaping happens only at serialization.
type Text struct {
	Value string
}

// NewText creates a new Text node
func NewText(value string) *Text {
	return &Text{Value: value}
}

// Visit implements the Node interface
func (t *Text) Visit(visitor Visitor, context any) any {
	return visitor.VisitText(t, context)
}

// Comment represents a comment node
type Comment struct {
	Value string
}

// NewComment creates a new Comment node
func NewComment(value string) *Comment {
	return &Comment{Value: value}
}

// Visit implements the Node interface
func (c *Comment) Visit(visitor Visitor, context any) any {
	return visitor.VisitComment(c, context)
}

// Doctype represents a document type declaration
type Doctype struct {
	Value string
}

// NewDoctype creates a new Doctype node
func NewDoctype(value string) *Doctype {
	return &Doctype{Value: value}
}

// Visit implements the Node interface
func (d *Doctype) Visit(visitor Visitor, context any) any {
	return visitor.VisitDoctype(d, context)
}

// Attribute is one attribute of an Element. HasValue distinguishes
// name="value" attributes from boolean-presence attributes, which serialize
// as the bare name.
type Attribute struct {
	Name     string
	Value    string
	HasValue bool
}

// NewAttribute creates a new valued Attribute
func NewAttribute(name, value string) *Attribute {
	return &Attribute{Name: name, Value: value, HasValue: true}
}

// NewFlagAttribute creates a new boolean-presence Attribute
func NewFlagAttribute(name string) *Attribute {
	return &Attribute{Name: name}
}

// Element represents an element node. Attribute names are unique and keep
// insertion order; children are exclusively owned by their parent and do
// not reference it back.
type Element struct {
	Name     string
	Attrs    []*Attribute
	Children []Node

	attrIndex map[string]int
}

// NewElement creates a new Element. The tag name is normalized to lower
// case and fixed at creation.
func NewElement(name string, attrs []*Attribute, children []Node) (*Element, error) {
	if name == "" {
		return nil, &StructureError{Msg: "element tag cannot be empty"}
	}
	e := &Element{Name: schema.NormalizeTagName(name)}
	for _, attr := range attrs {
		e.SetAttr(attr)
	}
	for _, child := range children {
		if err := e.AppendChild(child); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Visit implements the Node interface
func (e *Element) Visit(visitor Visitor, context any) any {
	return visitor.VisitElement(e, context)
}

// IsVoid returns whether the element is a void element
func (e *Element) IsVoid() bool {
	return schema.IsVoidElement(e.Name)
}

// AppendChild appends a child node, enforcing the void-element invariant.
func (e *Element) AppendChild(child Node) error {
	if e.IsVoid() {
		return &StructureError{Msg: fmt.Sprintf("void element <%s> cannot have children", e.Name)}
	}
	e.Children = append(e.Children, child)
	return nil
}

// SetAttr sets an attribute. A repeated name overwrites the earlier value
// in place, keeping the position of the first declaration.
func (e *Element) SetAttr(attr *Attribute) {
	if e.attrIndex == nil {
		e.attrIndex = make(map[string]int)
	}
	if i, ok := e.attrIndex[attr.Name]; ok {
		e.Attrs[i] = attr
		return
	}
	e.attrIndex[attr.Name] = len(e.Attrs)
	e.Attrs = append(e.Attrs, attr)
}

// Attr returns the attribute with the given name, if present.
func (e *Element) Attr(name string) (*Attribute, bool) {
	if e.attrIndex == nil {
		return nil, false
	}
	if i, ok := e.attrIndex[name]; ok {
		return e.Attrs[i], true
	}
	return nil, false
}

// Fragment is a childless-parent root holding top-level siblings when a
// template has no single enclosing element. It never serializes as a tag of
// its own.
type Fragment struct {
	Children []Node
}

// NewFragment creates a new Fragment
func NewFragment(children []Node) *Fragment {
	return &Fragment{Children: children}
}

// Visit implements the Node interface
func (f *Fragment) Visit(visitor Visitor, context any) any {
	return visitor.VisitFragment(f, context)
}

// AppendChild appends a child node
func (f *Fragment) AppendChild(child Node) {
	f.Children = append(f.Children, child)
}

// Visitor dispatches over the node kinds
type Visitor interface {
	VisitText(text *Text, context any) any
	VisitComment(comment *Comment, context any) any
	VisitDoctype(doctype *Doctype, context any) any
	VisitElement(element *Element, context any) any
	VisitFragment(fragment *Fragment, context any) any
}

// VisitAll visits every node in order and collects the results
func VisitAll(visitor Visitor, nodes []Node, context any) []any {
	results := make([]any, 0, len(nodes))
	for _, node := range nodes {
		results = append(results, node.Visit(visitor, context))
	}
	return results
}
