// Package mcerrors defines the error kinds raised by the multconst engine.
package mcerrors

import (
	"fmt"
	"strings"
)

// Kind identifies the class of error.
type Kind string

const (
	// UnsupportedNegation is raised at entry to find_sequence or the seeder
	// when k < 0 and the profile cannot negate.
	UnsupportedNegation Kind = "UnsupportedNegation"
	// ParseError is raised by the instruction parser on malformed compact text.
	ParseError Kind = "ParseError"
	// InvariantViolation is raised by cache.Check when the cache is
	// internally inconsistent, by cache.UpdateField on an upper improvement
	// without instructions, by Sequence.Registers when a sequence needs more
	// registers than allowed, and by the search on a missing base case.
	InvariantViolation Kind = "InvariantViolation"
)

// Position locates a parse error within its input text.
type Position struct {
	Input  string
	Offset int
}

// Error carries a Kind plus enough context to render a single diagnostic
// line naming the error kind and the offending input.
type Error struct {
	Kind     Kind
	Message  string
	Input    string // the offending k, or the offending parser text
	Position Position
	Detail   []string // InvariantViolation: one line per broken invariant
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Input != "" {
		sb.WriteString(fmt.Sprintf(" (input: %s)", e.Input))
	}
	if e.Position.Input != "" {
		sb.WriteString(fmt.Sprintf("\n  at offset %d: %q", e.Position.Offset, e.Position.Input))
	}
	for _, d := range e.Detail {
		sb.WriteString("\n  - " + d)
	}
	return sb.String()
}

// NewUnsupportedNegation reports that k requires negation under a profile
// that cannot negate.
func NewUnsupportedNegation(k int64) *Error {
	return &Error{
		Kind:    UnsupportedNegation,
		Message: "profile cannot negate",
		Input:   fmt.Sprintf("%d", k),
	}
}

// NewParseError reports malformed compact instruction text.
func NewParseError(message, text string, offset int) *Error {
	return &Error{
		Kind:    ParseError,
		Message: message,
		Input:   text,
		Position: Position{
			Input:  text,
			Offset: offset,
		},
	}
}

// NewInvariantViolation reports broken invariants, one detail line each.
func NewInvariantViolation(detail ...string) *Error {
	return &Error{
		Kind:    InvariantViolation,
		Message: "cache invariants violated",
		Detail:  detail,
	}
}

// WithDetail appends additional diagnostic lines.
func (e *Error) WithDetail(lines ...string) *Error {
	e.Detail = append(e.Detail, lines...)
	return e
}
