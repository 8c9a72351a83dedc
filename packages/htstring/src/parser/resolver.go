package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hts-go/packages/htstring/src/nodes"
	"hts-go/packages/htstring/src/schema"
	"hts-go/packages/htstring/src/tstring"
	"hts-go/packages/htstring/src/util"
)

// Context is the lexical context of an interpolation slot, derived from the
// tokenizer state at the slot boundary. It exists only while a slot is being
// resolved.
type Context int

const (
	// ContextText is ordinary character data between tags
	ContextText Context = iota
	// ContextTagName is inside a tag name (start or end tag)
	ContextTagName
	// ContextAttributeName is inside or before an attribute name
	ContextAttributeName
	// ContextAttributeValue is an attribute value position, quoted or not
	ContextAttributeValue
	// ContextComment is inside a comment body
	ContextComment
	// ContextRawText is inside the body of a raw-text element
	ContextRawText
)

// String returns the name of the context
func (c Context) String() string {
	switch c {
	case ContextText:
		return "text"
	case ContextTagName:
		return "tag name"
	case ContextAttributeName:
		return "attribute name"
	case ContextAttributeValue:
		return "attribute value"
	case ContextComment:
		return "comment"
	case ContextRawText:
		return "raw text"
	default:
		return fmt.Sprintf("Context(%d)", int(c))
	}
}

type actionKind int

const (
	// insert escaped-at-serialization text at the current position
	actionInsertText actionKind = iota
	// append already-built nodes at the current position, no re-escaping
	actionSpliceNodes
	// contribute text to the pending attribute value
	actionInsertAttrValue
	// set or clear the pending attribute as a presence-only attribute
	actionSetPresence
	// replace the pending attribute with a derived attribute list
	actionExpandAttrs
)

// resolution is the action produced for one slot. Exactly one of the value
// fields is meaningful for a given kind.
type resolution struct {
	kind    actionKind
	text    string
	nodes   []nodes.Node
	present bool
	attrs   []*nodes.Attribute
}

// slotInput carries everything the resolver needs about one slot.
type slotInput struct {
	ctx Context
	// attribute name owning the value, for ContextAttributeValue
	attrName string
	// true when the slot is the entire attribute value (src={url}), false
	// when it contributes to a partially literal value (src="a/{x}")
	wholeValue bool
	// enclosing raw-text element name, for ContextRawText
	rawTag string
	loc    *util.ParseLocation
}

// resolveSlot decides how one interpolation value is escaped, spliced or
// rejected, checking contexts in the order of the safety rules: structure
// positions first, then opaque-text positions, then attribute values, then
// text content.
func resolveSlot(in slotInput, value any) (resolution, *util.ParseError) {
	switch in.ctx {
	case ContextTagName, ContextAttributeName:
		// Dynamic tag and attribute names are never permitted: they would
		// let data control structure.
		return resolution{}, util.NewParseError(util.ErrorKindUnsafeInterpolation,
			fmt.Sprintf("cannot interpolate a %T value in %s position", value, in.ctx), in.loc)

	case ContextComment, ContextRawText:
		// Opaque text: coerce and insert. The serializer guards the
		// respective closing sequences.
		return resolution{kind: actionInsertText, text: stringifyLoose(value)}, nil

	case ContextAttributeValue:
		return resolveAttributeValue(in, value)

	default:
		return resolveText(in, value)
	}
}

func resolveAttributeValue(in slotInput, value any) (resolution, *util.ParseError) {
	if in.wholeValue {
		if res, ok, err := resolveSpecialAttribute(in, value); ok || err != nil {
			return res, err
		}
		switch v := value.(type) {
		case bool:
			return resolution{kind: actionSetPresence, present: v}, nil
		case nil:
			return resolution{kind: actionSetPresence, present: false}, nil
		case tstring.Raw:
			return resolution{kind: actionInsertAttrValue, text: string(v)}, nil
		}
		if s, ok := coerceScalar(value); ok {
			return resolution{kind: actionInsertAttrValue, text: s}, nil
		}
		return resolution{}, util.NewParseError(util.ErrorKindUnsafeInterpolation,
			fmt.Sprintf("cannot use %T as value for attribute %q", value, in.attrName), in.loc)
	}

	// Partially literal value: only scalar text can join the literal parts.
	switch v := value.(type) {
	case bool:
		return resolution{kind: actionInsertAttrValue, text: strconv.FormatBool(v)}, nil
	case nil:
		return resolution{kind: actionInsertAttrValue, text: ""}, nil
	case tstring.Raw:
		return resolution{kind: actionInsertAttrValue, text: string(v)}, nil
	}
	if s, ok := coerceScalar(value); ok {
		return resolution{kind: actionInsertAttrValue, text: s}, nil
	}
	return resolution{}, util.NewParseError(util.ErrorKindUnsafeInterpolation,
		fmt.Sprintf("cannot use %T inside the value of attribute %q", value, in.attrName), in.loc)
}

// resolveSpecialAttribute handles the attribute names with dedicated value
// shapes: class, style, data and aria. The second result reports whether the
// name/value pair was claimed.
func resolveSpecialAttribute(in slotInput, value any) (resolution, bool, *util.ParseError) {
	switch in.attrName {
	case "class":
		if s, ok, err := classNames(in, value); ok || err != nil {
			return resolution{kind: actionInsertAttrValue, text: s}, ok, err
		}
	case "style":
		if m, ok := value.(map[string]string); ok {
			return resolution{kind: actionInsertAttrValue, text: styleString(m)}, true, nil
		}
	case "data", "aria":
		attrs, err := expandPrefixedAttrs(in, value)
		if err != nil {
			return resolution{}, true, err
		}
		return resolution{kind: actionExpandAttrs, attrs: attrs}, true, nil
	}
	return resolution{}, false, nil
}

// classNames joins class-name shapes into a single class string: a plain
// string passes through, a slice joins with spaces, a map contributes the
// keys with true values in sorted order.
func classNames(in slotInput, value any) (string, bool, *util.ParseError) {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, " "), true, nil
	case map[string]bool:
		names := make([]string, 0, len(v))
		for name, on := range v {
			if on {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return strings.Join(names, " "), true, nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			part, ok, err := classNames(in, item)
			if err != nil {
				return "", true, err
			}
			if !ok {
				s, scalar := coerceScalar(item)
				if !scalar {
					return "", true, util.NewParseError(util.ErrorKindUnsafeInterpolation,
						fmt.Sprintf("cannot use %T as a class name", item), in.loc)
				}
				part = s
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " "), true, nil
	}
	return "", false, nil
}

// styleString renders a style map as "name: value" declarations. Go maps
// have no declaration order, so keys are sorted for stable output.
func styleString(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, "; ")
}

// expandPrefixedAttrs expands data={...} and aria={...} maps into data-* and
// aria-* attributes. Derived names are validated so map keys cannot smuggle
// markup structure.
func expandPrefixedAttrs(in slotInput, value any) ([]*nodes.Attribute, *util.ParseError) {
	m, ok := anyStringMap(value)
	if !ok {
		return nil, util.NewParseError(util.ErrorKindUnsafeInterpolation,
			fmt.Sprintf("cannot use %T as value for %s attributes", value, in.attrName), in.loc)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var attrs []*nodes.Attribute
	for _, k := range keys {
		name := in.attrName + "-" + k
		if !schema.IsValidAttributeName(name) {
			return nil, util.NewParseError(util.ErrorKindUnsafeInterpolation,
				fmt.Sprintf("invalid expanded attribute name %q", name), in.loc)
		}
		v := m[k]
		if in.attrName == "aria" {
			// aria-* attributes carry explicit "true"/"false" values.
			switch b := v.(type) {
			case bool:
				attrs = append(attrs, nodes.NewAttribute(name, strconv.FormatBool(b)))
				continue
			case nil:
				continue
			}
		} else {
			switch b := v.(type) {
			case bool:
				if b {
					attrs = append(attrs, nodes.NewFlagAttribute(name))
				}
				continue
			case nil:
				continue
			}
		}
		s, scalar := coerceScalar(v)
		if !scalar {
			return nil, util.NewParseError(util.ErrorKindUnsafeInterpolation,
				fmt.Sprintf("cannot use %T as value for attribute %q", v, name), in.loc)
		}
		attrs = append(attrs, nodes.NewAttribute(name, s))
	}
	return attrs, nil
}

func anyStringMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, true
	case map[string]bool:
		m := make(map[string]any, len(v))
		for k, b := range v {
			m[k] = b
		}
		return m, true
	}
	return nil, false
}

func resolveText(in slotInput, value any) (resolution, *util.ParseError) {
	switch v := value.(type) {
	case nodes.Node:
		// A previously built tree splices by reference; it is already a
		// validated tree and is never re-escaped or re-parsed.
		return resolution{kind: actionSpliceNodes, nodes: flattenSplice(v)}, nil
	case []nodes.Node:
		spliced := make([]nodes.Node, 0, len(v))
		for _, n := range v {
			spliced = append(spliced, flattenSplice(n)...)
		}
		return resolution{kind: actionSpliceNodes, nodes: spliced}, nil
	case *tstring.Template:
		sub, err := Parse(v)
		if err != nil {
			return resolution{}, wrapNestedError(err, in.loc)
		}
		return resolution{kind: actionSpliceNodes, nodes: flattenSplice(sub)}, nil
	case tstring.Raw:
		// The escape hatch: trusted markup is re-tokenized as nested
		// content rather than escaped.
		sub, err := Parse(tstring.Lit(string(v)))
		if err != nil {
			return resolution{}, wrapNestedError(err, in.loc)
		}
		return resolution{kind: actionSpliceNodes, nodes: flattenSplice(sub)}, nil
	case []any:
		var spliced []nodes.Node
		for _, item := range v {
			res, err := resolveText(in, item)
			if err != nil {
				return resolution{}, err
			}
			switch res.kind {
			case actionSpliceNodes:
				spliced = append(spliced, res.nodes...)
			case actionInsertText:
				if res.text != "" {
					spliced = append(spliced, nodes.NewText(res.text))
				}
			}
		}
		return resolution{kind: actionSpliceNodes, nodes: spliced}, nil
	case []string:
		spliced := make([]nodes.Node, 0, len(v))
		for _, s := range v {
			spliced = append(spliced, nodes.NewText(s))
		}
		return resolution{kind: actionSpliceNodes, nodes: spliced}, nil
	case bool:
		if !v {
			return resolution{kind: actionSpliceNodes}, nil
		}
		return resolution{kind: actionInsertText, text: "true"}, nil
	case nil:
		return resolution{kind: actionSpliceNodes}, nil
	}
	if s, ok := coerceScalar(value); ok {
		return resolution{kind: actionInsertText, text: s}, nil
	}
	// Anything else coerces to its printed form, matching scalar handling.
	return resolution{kind: actionInsertText, text: fmt.Sprint(value)}, nil
}

// flattenSplice unwraps a Fragment into its children. A Fragment is a
// root-only convenience, never a child: splicing one contributes its
// children to the parent directly.
func flattenSplice(n nodes.Node) []nodes.Node {
	if f, ok := n.(*nodes.Fragment); ok {
		return f.Children
	}
	return []nodes.Node{n}
}

func wrapNestedError(err error, loc *util.ParseLocation) *util.ParseError {
	if pe, ok := err.(*util.ParseError); ok {
		return util.NewParseError(pe.Kind, "in nested markup: "+pe.Msg, loc)
	}
	return util.NewParseError(util.ErrorKindMalformedMarkup, err.Error(), loc)
}

// coerceScalar converts scalar-like values to their text form. It does not
// accept nodes, sequences, maps or nil.
func coerceScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// stringifyLoose coerces any value to text for opaque-text positions
// (comments and raw-text bodies), where no markup interpretation happens.
func stringifyLoose(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case tstring.Raw:
		return string(v)
	case nodes.Node:
		return nodes.Serialize(v)
	case bool:
		return strconv.FormatBool(v)
	}
	if s, ok := coerceScalar(value); ok {
		return s
	}
	return fmt.Sprint(value)
}
