// Package parser turns an interleaved template value into a document tree.
// A grammar-aware tokenizer walks the literal segments, tracks the lexical
// context of every interpolation slot, and resolves each slot with
// context-specific escaping and splicing rules, so dynamic values can only
// contribute content, never structure.
package parser

import (
	"errors"

	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/tstring"
	"hts-go/packages/htstring/src/util"
)

// Parse parses a template into a document tree. When the template holds
// exactly one top-level element it is returned directly; otherwise the
// result is a Fragment of the top-level children. Parsing fails atomically:
// on error no partial tree is returned.
func Parse(tpl *tstring.Template) (nodes.Node, error) {
	root, err := ParseFragment(tpl)
	if err != nil {
		return nil, err
	}
	if len(root.Children) == 1 {
		if el, ok := root.Children[0].(*nodes.Element); ok {
			return el, nil
		}
	}
	return root, nil
}

// ParseFragment parses a template and always returns the root Fragment,
// without the single-element unwrapping of Parse.
func ParseFragment(tpl *tstring.Template) (*nodes.Fragment, error) {
	if tpl == nil {
		return nil, errors.New("parser: nil template")
	}
	if len(tpl.Strings) != len(tpl.Values)+1 {
		return nil, errors.New("parser: template segment/value counts out of shape")
	}
	b := newTreeBuilder(tpl)
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.root, nil
}

// resolveSlotAt resolves slot i at the boundary the scanner just reached and
// applies the resulting action in place.
func (b *treeBuilder) resolveSlotAt(i int) *util.ParseError {
	ctx, wholeValue := b.slotContext()
	in := slotInput{
		ctx:        ctx,
		attrName:   b.attrName,
		wholeValue: wholeValue,
		rawTag:     b.rawTag,
		loc:        b.location(),
	}

	if ctx == ContextText {
		if err := b.flushText(); err != nil {
			return err
		}
	}

	res, perr := resolveSlot(in, b.tpl.Values[i])
	if perr != nil {
		return perr
	}

	switch res.kind {
	case actionInsertText:
		switch ctx {
		case ContextComment:
			b.commentBuf.WriteString(res.text)
			// inserted values never terminate the comment, even after
			// literal dashes
			b.dashRun = 0
		case ContextRawText:
			b.rawBuf.WriteString(res.text)
		default:
			return b.appendText(res.text)
		}

	case actionSpliceNodes:
		for _, n := range res.nodes {
			if err := b.appendNode(n); err != nil {
				return err
			}
		}

	case actionInsertAttrValue:
		if b.state == stateBeforeAttrValue {
			b.pending.SetAttr(nodes.NewAttribute(b.attrName, res.text))
			b.attrName = ""
			b.state = stateBeforeAttrName
			return nil
		}
		b.flushAttrValue()
		b.attrVal.WriteString(res.text)

	case actionSetPresence:
		if res.present {
			b.pending.SetAttr(nodes.NewFlagAttribute(b.attrName))
		}
		b.attrName = ""
		b.state = stateBeforeAttrName

	case actionExpandAttrs:
		for _, attr := range res.attrs {
			b.pending.SetAttr(attr)
		}
		b.attrName = ""
		b.state = stateBeforeAttrName
	}
	return nil
}

// slotContext maps the scanner state at a slot boundary to the lexical
// context handed to the resolver. wholeValue reports whether the slot is the
// entire attribute value rather than part of a literal one.
func (b *treeBuilder) slotContext() (ctx Context, wholeValue bool) {
	switch b.state {
	case stateText:
		return ContextText, false
	case stateBeforeAttrName, stateAttrName, stateAfterAttrName:
		return ContextAttributeName, false
	case stateBeforeAttrValue:
		return ContextAttributeValue, true
	case stateAttrValueDouble, stateAttrValueSingle, stateAttrValueUnquoted:
		return ContextAttributeValue, false
	case stateComment:
		return ContextComment, false
	case stateRawText:
		return ContextRawText, false
	default:
		// tag open/close names, self-closing tails, markup declarations:
		// every one of these is a structure-controlling position
		return ContextTagName, false
	}
}
