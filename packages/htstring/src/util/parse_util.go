package util

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// ErrorKindMalformedMarkup reports markup the grammar cannot accept,
	// e.g. "<" not followed by a valid tag start.
	ErrorKindMalformedMarkup ErrorKind = iota
	// ErrorKindMismatchedTag reports an end tag whose name does not match
	// the innermost open element.
	ErrorKindMismatchedTag
	// ErrorKindUnclosedStructure reports input that ended inside a tag,
	// comment, raw-text body, or with open elements remaining.
	ErrorKindUnclosedStructure
	// ErrorKindUnsafeInterpolation reports an interpolation slot in a
	// position where a dynamic value could alter document structure.
	ErrorKindUnsafeInterpolation
	// ErrorKindNestingTooDeep reports markup nested past the depth limit.
	ErrorKindNestingTooDeep
)

// String returns the name of the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindMalformedMarkup:
		return "MalformedMarkup"
	case ErrorKindMismatchedTag:
		return "MismatchedTag"
	case ErrorKindUnclosedStructure:
		return "UnclosedStructure"
	case ErrorKindUnsafeInterpolation:
		return "UnsafeInterpolation"
	case ErrorKindNestingTooDeep:
		return "NestingTooDeep"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseLocation identifies a position inside an interleaved template: the
// index of the literal segment being scanned and the byte offset within it.
// Slot boundaries are reported with the offset of the end of the preceding
// segment.
type ParseLocation struct {
	Segment int
	Offset  int
}

// NewParseLocation creates a new ParseLocation
func NewParseLocation(segment, offset int) *ParseLocation {
	return &ParseLocation{Segment: segment, Offset: offset}
}

// String returns a string representation of the location
func (p *ParseLocation) String() string {
	return fmt.Sprintf("segment %d, offset %d", p.Segment, p.Offset)
}

// ParseError is the error type raised by the tokenizer, tree builder and
// slot resolver. The whole parse fails atomically on the first ParseError;
// no partial tree is exposed.
type ParseError struct {
	Kind     ErrorKind
	Msg      string
	Location *ParseLocation
}

// NewParseError creates a new ParseError
func NewParseError(kind ErrorKind, msg string, location *ParseLocation) *ParseError {
	return &ParseError{Kind: kind, Msg: msg, Location: location}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// ErrorKindOf returns the kind of a ParseError wrapped anywhere in err.
// The second result is false if err holds no ParseError.
func ErrorKindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
