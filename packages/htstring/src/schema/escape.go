package schema

import (
	"strings"

	"golang.org/x/net/html"
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeText escapes the characters that would introduce markup structure
// inside text content: '&', '<' and '>'.
func EscapeText(value string) string {
	return textEscaper.Replace(value)
}

var doubleQuoteAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
)

var singleQuoteAttrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"'", "&#39;",
)

// EscapeAttribute escapes an attribute value for emission between quote
// characters: '&' and the active quote. quote must be '"' or '\''.
func EscapeAttribute(value string, quote byte) string {
	if quote == '\'' {
		return singleQuoteAttrEscaper.Replace(value)
	}
	return doubleQuoteAttrEscaper.Replace(value)
}

// EscapeComment guards comment content against premature termination by
// breaking up any comment-close sequence. No other escaping applies inside
// comments.
func EscapeComment(value string) string {
	return strings.ReplaceAll(value, "-->", "--&gt;")
}

// EscapeRawText guards the body of a raw-text element against an accidental
// closing-tag sequence for that element. Raw-text bodies are not markup, so
// entity escaping does not apply; the "<\/" form is the conventional guard
// and stays valid inside script bodies.
func EscapeRawText(elementName, value string) string {
	closing := "</" + strings.ToLower(elementName)
	lower := strings.ToLower(value)
	if !strings.Contains(lower, closing) {
		return value
	}
	var sb strings.Builder
	for {
		i := strings.Index(lower, closing)
		if i < 0 {
			sb.WriteString(value)
			return sb.String()
		}
		sb.WriteString(value[:i])
		sb.WriteString("<\\/")
		sb.WriteString(value[i+2 : i+len(closing)])
		value = value[i+len(closing):]
		lower = lower[i+len(closing):]
	}
}

// DecodeEntities resolves character and entity references in literal markup
// text. Tree text is stored decoded and escaped again only at serialization.
func DecodeEntities(value string) string {
	if !strings.ContainsRune(value, '&') {
		return value
	}
	return html.UnescapeString(value)
}
