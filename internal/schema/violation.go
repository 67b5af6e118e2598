package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes. Stable, safe to use as metric labels.
const (
	CodeType            = "type"
	CodeRequired        = "required"
	CodeInvalidUint128  = "invalid_uint128"
	CodeUint128Overflow = "uint128_overflow"
	CodeLimit           = "limit"
	CodeSchema          = "schema"
)

// ErrUnknownKind is returned when no schema document is registered for a kind.
var ErrUnknownKind = errors.New("unknown document kind")

// Violation is a single reason a document does not conform.
// Path is a JSON pointer into the document; "" is the document root.
type Violation struct {
	Path   string
	Reason string
	Code   string
}

func (v Violation) String() string {
	return fmt.Sprintf("%q: %q", v.Path, v.Reason)
}

// ViolationError is the non-empty, ordered list of violations for one document.
type ViolationError struct {
	Kind       string
	Violations []Violation
}

func (e *ViolationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "invalid document"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid %s document: %s", e.Kind, strings.Join(parts, "; "))
}

// ParseError reports malformed JSON syntax. It is raised before validation runs.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AsViolations extracts the violations carried by err, if any.
func AsViolations(err error) ([]Violation, bool) {
	var ve *ViolationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve.Violations, true
}
