// Package schema holds the static HTML grammar tables and the per-context
// escaping rules shared by the parser and the serializer. All tables are
// process-wide, read-only after package init, and safe for concurrent use.
package schema

import (
	"strings"

	"golang.org/x/net/html/atom"
)

// Void elements never have children and have no end tag.
// See https://developer.mozilla.org/en-US/docs/Glossary/Void_element
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Raw-text elements have opaque text bodies that are never parsed as markup.
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// Boolean attributes are significant by presence alone.
var booleanAttributes = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true,
	"autoplay": true, "checked": true, "controls": true, "default": true,
	"defer": true, "disabled": true, "formnovalidate": true, "inert": true,
	"ismap": true, "itemscope": true, "loop": true, "multiple": true,
	"muted": true, "nomodule": true, "novalidate": true, "open": true,
	"playsinline": true, "readonly": true, "required": true,
	"reversed": true, "selected": true,
}

// IsVoidElement returns whether name is a void element. Unknown names
// return false.
func IsVoidElement(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// IsRawTextElement returns whether name is a raw-text element. Unknown
// names return false.
func IsRawTextElement(name string) bool {
	return rawTextElements[strings.ToLower(name)]
}

// IsBooleanAttribute returns whether name is a boolean attribute. Unknown
// names return false.
func IsBooleanAttribute(name string) bool {
	return booleanAttributes[strings.ToLower(name)]
}

// NormalizeTagName lowercases a tag name, interning names of known HTML
// elements through the shared atom table.
func NormalizeTagName(name string) string {
	lower := strings.ToLower(name)
	if a := atom.Lookup([]byte(lower)); a != 0 {
		return a.String()
	}
	return lower
}

// IsValidAttributeName reports whether name may be used as an attribute
// name: ASCII letters, digits, '-', '_', ':' and '.', starting with a
// letter. Attribute names expanded from interpolated maps (data-*, aria-*)
// must pass this check so data values cannot smuggle markup structure.
func IsValidAttributeName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9'):
		case i > 0 && (c == '-' || c == '_' || c == ':' || c == '.'):
		default:
			return false
		}
	}
	return true
}
