package parser

import (
	"fmt"
	"strings"

	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/schema"
	"hts-go/packages/htstring/src/tstring"
	"hts-go/packages/htstring/src/util"
)

// maxNestingDepth bounds the open-element stack so pathological nesting
// fails with a parse error instead of unbounded memory growth.
const maxNestingDepth = 256

type state int

const (
	stateText state = iota
	stateTagOpen
	stateTagName
	stateBeforeAttrName
	stateAttrName
	stateAfterAttrName
	stateBeforeAttrValue
	stateAttrValueDouble
	stateAttrValueSingle
	stateAttrValueUnquoted
	stateSelfClosing
	stateEndTagOpen
	stateEndTagName
	stateAfterEndTagName
	stateMarkupDecl
	stateComment
	stateDoctype
	stateRawText
)

// treeBuilder walks the interleaved segments of a template with a markup
// state machine, resolving each slot against the lexical context it falls
// in, and assembles the node tree via an open-element stack.
type treeBuilder struct {
	tpl   *tstring.Template
	state state
	seg   int
	off   int

	root  *nodes.Fragment
	stack []*nodes.Element

	// pending start tag under construction
	pending  *nodes.Element
	tagBuf   strings.Builder
	attrName string
	// attrBuf holds the literal run being scanned (attribute name or the
	// undecoded tail of a value); attrVal accumulates the decoded value,
	// including verbatim slot text, across slot boundaries.
	attrBuf strings.Builder
	attrVal strings.Builder

	textBuf    strings.Builder
	endTagBuf  strings.Builder
	declBuf    strings.Builder
	commentBuf strings.Builder
	dashRun    int
	doctypeBuf strings.Builder

	rawEl  *nodes.Element
	rawTag string
	rawBuf strings.Builder
}

func newTreeBuilder(tpl *tstring.Template) *treeBuilder {
	return &treeBuilder{tpl: tpl, root: nodes.NewFragment(nil)}
}

func (b *treeBuilder) location() *util.ParseLocation {
	return util.NewParseLocation(b.seg, b.off)
}

func (b *treeBuilder) errorf(kind util.ErrorKind, format string, args ...any) *util.ParseError {
	return util.NewParseError(kind, fmt.Sprintf(format, args...), b.location())
}

func (b *treeBuilder) build() *util.ParseError {
	for i, segment := range b.tpl.Strings {
		b.seg = i
		b.off = 0
		for b.off < len(segment) {
			if b.state == stateRawText {
				if err := b.scanRawText(segment); err != nil {
					return err
				}
				continue
			}
			if err := b.step(segment[b.off]); err != nil {
				return err
			}
			b.off++
		}
		if i < len(b.tpl.Values) {
			if err := b.resolveSlotAt(i); err != nil {
				return err
			}
		}
	}
	return b.finish()
}

// step consumes one byte of the current literal segment.
func (b *treeBuilder) step(c byte) *util.ParseError {
	switch b.state {
	case stateText:
		if c == '<' {
			if err := b.flushText(); err != nil {
				return err
			}
			b.state = stateTagOpen
			return nil
		}
		b.textBuf.WriteByte(c)

	case stateTagOpen:
		switch {
		case c == '/':
			b.state = stateEndTagOpen
		case c == '!':
			b.declBuf.Reset()
			b.state = stateMarkupDecl
		case isASCIILetter(c):
			b.tagBuf.Reset()
			b.tagBuf.WriteByte(c)
			b.state = stateTagName
		default:
			return b.errorf(util.ErrorKindMalformedMarkup, "'<' not followed by a valid tag start (%q)", c)
		}

	case stateTagName:
		switch {
		case isNameByte(c):
			b.tagBuf.WriteByte(c)
		case isWhitespace(c):
			if err := b.openPendingElement(); err != nil {
				return err
			}
			b.state = stateBeforeAttrName
		case c == '/':
			if err := b.openPendingElement(); err != nil {
				return err
			}
			b.state = stateSelfClosing
		case c == '>':
			if err := b.openPendingElement(); err != nil {
				return err
			}
			return b.finishStartTag(false)
		default:
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in tag name", c)
		}

	case stateBeforeAttrName:
		switch {
		case isWhitespace(c):
		case c == '/':
			b.state = stateSelfClosing
		case c == '>':
			return b.finishStartTag(false)
		case c == '=' || c == '"' || c == '\'' || c == '<':
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q before attribute name", c)
		default:
			b.attrBuf.Reset()
			b.attrBuf.WriteByte(c)
			b.state = stateAttrName
		}

	case stateAttrName:
		switch {
		case isWhitespace(c):
			b.takeAttrName()
			b.state = stateAfterAttrName
		case c == '=':
			b.takeAttrName()
			b.state = stateBeforeAttrValue
		case c == '>':
			b.takeAttrName()
			b.commitFlagAttr()
			return b.finishStartTag(false)
		case c == '/':
			b.takeAttrName()
			b.commitFlagAttr()
			b.state = stateSelfClosing
		case c == '"' || c == '\'' || c == '<':
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in attribute name", c)
		default:
			b.attrBuf.WriteByte(c)
		}

	case stateAfterAttrName:
		switch {
		case isWhitespace(c):
		case c == '=':
			b.state = stateBeforeAttrValue
		case c == '>':
			b.commitFlagAttr()
			return b.finishStartTag(false)
		case c == '/':
			b.commitFlagAttr()
			b.state = stateSelfClosing
		case c == '"' || c == '\'' || c == '<':
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q after attribute name", c)
		default:
			b.commitFlagAttr()
			b.attrBuf.Reset()
			b.attrBuf.WriteByte(c)
			b.state = stateAttrName
		}

	case stateBeforeAttrValue:
		switch {
		case isWhitespace(c):
		case c == '"':
			b.attrBuf.Reset()
			b.state = stateAttrValueDouble
		case c == '\'':
			b.attrBuf.Reset()
			b.state = stateAttrValueSingle
		case c == '>':
			return b.errorf(util.ErrorKindMalformedMarkup, "missing value for attribute %q", b.attrName)
		case c == '<' || c == '=' || c == '`':
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q before attribute value", c)
		default:
			b.attrBuf.Reset()
			b.attrBuf.WriteByte(c)
			b.state = stateAttrValueUnquoted
		}

	case stateAttrValueDouble:
		if c == '"' {
			b.commitValuedAttr()
			b.state = stateBeforeAttrName
			return nil
		}
		b.attrBuf.WriteByte(c)

	case stateAttrValueSingle:
		if c == '\'' {
			b.commitValuedAttr()
			b.state = stateBeforeAttrName
			return nil
		}
		b.attrBuf.WriteByte(c)

	case stateAttrValueUnquoted:
		switch {
		case isWhitespace(c):
			b.commitValuedAttr()
			b.state = stateBeforeAttrName
		case c == '>':
			b.commitValuedAttr()
			return b.finishStartTag(false)
		case c == '"' || c == '\'' || c == '<' || c == '=' || c == '`':
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in unquoted attribute value", c)
		default:
			b.attrBuf.WriteByte(c)
		}

	case stateSelfClosing:
		if c == '>' {
			return b.finishStartTag(true)
		}
		return b.errorf(util.ErrorKindMalformedMarkup, "expected '>' after '/' in start tag, got %q", c)

	case stateEndTagOpen:
		if isASCIILetter(c) {
			b.endTagBuf.Reset()
			b.endTagBuf.WriteByte(c)
			b.state = stateEndTagName
			return nil
		}
		return b.errorf(util.ErrorKindMalformedMarkup, "'</' not followed by a tag name (%q)", c)

	case stateEndTagName:
		switch {
		case isNameByte(c):
			b.endTagBuf.WriteByte(c)
		case isWhitespace(c):
			b.state = stateAfterEndTagName
		case c == '>':
			return b.closeElement()
		default:
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in end tag", c)
		}

	case stateAfterEndTagName:
		switch {
		case isWhitespace(c):
		case c == '>':
			return b.closeElement()
		default:
			return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in end tag", c)
		}

	case stateMarkupDecl:
		return b.stepMarkupDecl(c)

	case stateComment:
		switch {
		case c == '-':
			b.dashRun++
			b.commentBuf.WriteByte(c)
		case c == '>' && b.dashRun >= 2:
			body := b.commentBuf.String()
			body = body[:len(body)-2]
			b.commentBuf.Reset()
			b.dashRun = 0
			b.state = stateText
			return b.appendNode(nodes.NewComment(body))
		default:
			b.dashRun = 0
			b.commentBuf.WriteByte(c)
		}

	case stateDoctype:
		if c == '>' {
			name := strings.TrimSpace(b.doctypeBuf.String())
			b.doctypeBuf.Reset()
			b.state = stateText
			return b.appendNode(nodes.NewDoctype(name))
		}
		b.doctypeBuf.WriteByte(c)
	}
	return nil
}

// stepMarkupDecl disambiguates "<!--" comments from "<!DOCTYPE".
func (b *treeBuilder) stepMarkupDecl(c byte) *util.ParseError {
	buf := b.declBuf.String()
	if buf == "-" {
		if c != '-' {
			return b.errorf(util.ErrorKindMalformedMarkup, "'<!-' not followed by '-'")
		}
		b.declBuf.Reset()
		b.commentBuf.Reset()
		b.dashRun = 0
		b.state = stateComment
		return nil
	}
	if buf == "" && c == '-' {
		b.declBuf.WriteByte(c)
		return nil
	}
	if !isASCIILetter(c) {
		return b.errorf(util.ErrorKindMalformedMarkup, "unexpected character %q in markup declaration", c)
	}
	b.declBuf.WriteByte(c)
	if b.declBuf.Len() == len("doctype") {
		if strings.EqualFold(b.declBuf.String(), "doctype") {
			b.declBuf.Reset()
			b.doctypeBuf.Reset()
			b.state = stateDoctype
			return nil
		}
		return b.errorf(util.ErrorKindMalformedMarkup, "unsupported markup declaration %q", b.declBuf.String())
	}
	return nil
}

// scanRawText consumes the body of a raw-text element from the current
// segment. The closing tag only counts when it appears in a literal segment.
func (b *treeBuilder) scanRawText(segment string) *util.ParseError {
	rest := segment[b.off:]
	lower := strings.ToLower(rest)
	closing := "</" + b.rawTag

	from := 0
	for {
		idx := strings.Index(lower[from:], closing)
		if idx < 0 {
			b.rawBuf.WriteString(rest)
			b.off = len(segment)
			return nil
		}
		idx += from
		k := idx + len(closing)
		for k < len(rest) && isWhitespace(rest[k]) {
			k++
		}
		if k < len(rest) && rest[k] == '>' {
			b.rawBuf.WriteString(rest[:idx])
			if err := b.finishRawText(); err != nil {
				return err
			}
			b.off += k + 1
			return nil
		}
		from = idx + 1
	}
}

func (b *treeBuilder) finishRawText() *util.ParseError {
	if b.rawBuf.Len() > 0 {
		if err := b.rawEl.AppendChild(nodes.NewText(b.rawBuf.String())); err != nil {
			return b.errorf(util.ErrorKindMalformedMarkup, "%s", err)
		}
		b.rawBuf.Reset()
	}
	b.rawEl = nil
	b.rawTag = ""
	b.state = stateText
	return nil
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameByte(c byte) bool {
	return isASCIILetter(c) || c >= '0' && c <= '9' || c == '-' || c == '_' || c == ':' || c == '.'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// flushText decodes and appends the pending literal text, merging adjacent
// text siblings.
func (b *treeBuilder) flushText() *util.ParseError {
	if b.textBuf.Len() == 0 {
		return nil
	}
	text := schema.DecodeEntities(b.textBuf.String())
	b.textBuf.Reset()
	return b.appendText(text)
}

// appendText adds already-decoded text at the current position, merging with
// a preceding Text sibling when one exists.
func (b *treeBuilder) appendText(text string) *util.ParseError {
	if text == "" {
		return nil
	}
	children := b.containerChildren()
	if n := len(children); n > 0 {
		if prev, ok := children[n-1].(*nodes.Text); ok {
			merged := nodes.NewText(prev.Value + text)
			b.replaceLastChild(merged)
			return nil
		}
	}
	return b.appendNode(nodes.NewText(text))
}

func (b *treeBuilder) containerChildren() []nodes.Node {
	if len(b.stack) > 0 {
		return b.stack[len(b.stack)-1].Children
	}
	return b.root.Children
}

func (b *treeBuilder) replaceLastChild(n nodes.Node) {
	if len(b.stack) > 0 {
		el := b.stack[len(b.stack)-1]
		el.Children[len(el.Children)-1] = n
		return
	}
	b.root.Children[len(b.root.Children)-1] = n
}

func (b *treeBuilder) appendNode(n nodes.Node) *util.ParseError {
	if len(b.stack) > 0 {
		if err := b.stack[len(b.stack)-1].AppendChild(n); err != nil {
			return b.errorf(util.ErrorKindMalformedMarkup, "%s", err)
		}
		return nil
	}
	b.root.AppendChild(n)
	return nil
}

func (b *treeBuilder) openPendingElement() *util.ParseError {
	el, err := nodes.NewElement(b.tagBuf.String(), nil, nil)
	if err != nil {
		return b.errorf(util.ErrorKindMalformedMarkup, "%s", err)
	}
	b.tagBuf.Reset()
	b.pending = el
	return nil
}

func (b *treeBuilder) takeAttrName() {
	b.attrName = strings.ToLower(b.attrBuf.String())
	b.attrBuf.Reset()
}

func (b *treeBuilder) commitFlagAttr() {
	if b.attrName == "" {
		return
	}
	b.pending.SetAttr(nodes.NewFlagAttribute(b.attrName))
	b.attrName = ""
}

func (b *treeBuilder) commitValuedAttr() {
	b.flushAttrValue()
	value := b.attrVal.String()
	b.attrVal.Reset()
	b.pending.SetAttr(nodes.NewAttribute(b.attrName, value))
	b.attrName = ""
}

// flushAttrValue decodes the pending literal run of the current attribute
// value into the accumulator. Slot text is appended to the accumulator
// directly and never decoded.
func (b *treeBuilder) flushAttrValue() {
	if b.attrBuf.Len() > 0 {
		b.attrVal.WriteString(schema.DecodeEntities(b.attrBuf.String()))
		b.attrBuf.Reset()
	}
}

// finishStartTag completes the pending start tag: void and self-closing
// elements attach without opening, raw-text elements switch the scanner to
// their opaque body, everything else opens on the stack.
func (b *treeBuilder) finishStartTag(selfClosing bool) *util.ParseError {
	el := b.pending
	b.pending = nil
	if err := b.appendNode(el); err != nil {
		return err
	}
	if schema.IsRawTextElement(el.Name) && !selfClosing {
		b.rawEl = el
		b.rawTag = el.Name
		b.rawBuf.Reset()
		b.state = stateRawText
		return nil
	}
	if !selfClosing && !el.IsVoid() {
		if len(b.stack) >= maxNestingDepth {
			return b.errorf(util.ErrorKindNestingTooDeep,
				"markup nested deeper than %d elements", maxNestingDepth)
		}
		b.stack = append(b.stack, el)
	}
	b.state = stateText
	return nil
}

func (b *treeBuilder) closeElement() *util.ParseError {
	name := schema.NormalizeTagName(b.endTagBuf.String())
	b.endTagBuf.Reset()
	if len(b.stack) == 0 {
		return b.errorf(util.ErrorKindMismatchedTag,
			"unexpected closing tag </%s> with no matching opening tag", name)
	}
	top := b.stack[len(b.stack)-1]
	if top.Name != name {
		return b.errorf(util.ErrorKindMismatchedTag,
			"mismatched closing tag </%s> for <%s>", name, top.Name)
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.state = stateText
	return nil
}

// finish checks the terminal condition: input exhausted in text state with
// no open elements.
func (b *treeBuilder) finish() *util.ParseError {
	switch b.state {
	case stateText:
		if err := b.flushText(); err != nil {
			return err
		}
	case stateRawText:
		return b.errorf(util.ErrorKindUnclosedStructure,
			"input ended inside raw-text element <%s>", b.rawTag)
	case stateComment:
		return b.errorf(util.ErrorKindUnclosedStructure, "input ended inside a comment")
	default:
		return b.errorf(util.ErrorKindUnclosedStructure, "input ended inside a tag")
	}
	if len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		return b.errorf(util.ErrorKindUnclosedStructure,
			"missing closing tag for <%s>", top.Name)
	}
	return nil
}
