// Package tstring models the interleaved template value consumed by the
// parser: an ordered sequence of literal markup segments with one
// interpolation slot between every pair of adjacent segments.
package tstring

import "fmt"

// Raw wraps a string the caller asserts is trusted markup. The parser
// re-tokenizes its content as nested markup instead of escaping it. This is
// the explicit opt-out from the no-structure-from-data guarantee.
type Raw string

// Template is an immutable interleaved template value: Strings[0], Values[0],
// Strings[1], Values[1], ..., Strings[n]. There is always exactly one more
// literal segment than there are slot values.
type Template struct {
	Strings []string
	Values  []any
}

// New creates a new Template from literal segments and slot values.
func New(strings []string, values ...any) (*Template, error) {
	if len(strings) != len(values)+1 {
		return nil, fmt.Errorf(
			"tstring: %d literal segments require %d slot values, got %d",
			len(strings), len(strings)-1, len(values))
	}
	return &Template{Strings: strings, Values: values}, nil
}

// MustNew is like New but panics on a segment/value count mismatch.
// Intended for templates whose shape is fixed at the call site.
func MustNew(strings []string, values ...any) *Template {
	t, err := New(strings, values...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lit creates a Template holding a single literal segment and no slots.
func Lit(s string) *Template {
	return &Template{Strings: []string{s}}
}

// NumSlots returns the number of interpolation slots.
func (t *Template) NumSlots() int {
	return len(t.Values)
}

// SlotBoundary returns the literal characters immediately preceding and
// following slot i in the original source. The tokenizer uses its own state
// instead, but the producer contract exposes them for diagnostics.
func (t *Template) SlotBoundary(i int) (before, after byte) {
	if prev := t.Strings[i]; len(prev) > 0 {
		before = prev[len(prev)-1]
	}
	if next := t.Strings[i+1]; len(next) > 0 {
		after = next[0]
	}
	return before, after
}
