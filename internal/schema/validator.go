// Package schema validates bank query response documents against their JSON
// Schema documents and reports ordered, path-addressed violations.
package schema

import (
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type options struct {
	documentsDir string
	maxCoins     int
}

// Option configures New.
type Option func(*options)

// WithDocumentsDir loads extra schema documents from dir. Each *.json file
// registers a kind named after the file; a file named like a built-in kind
// replaces its schema document but keeps its typed checks.
func WithDocumentsDir(dir string) Option {
	return func(o *options) { o.documentsDir = dir }
}

// WithMaxCoins bounds the number of coins accepted in a coin list.
// Zero means unlimited.
func WithMaxCoins(n int) Option {
	return func(o *options) { o.maxCoins = n }
}

type document struct {
	schema *jsonschema.Schema
	check  checkFunc
}

// Validator holds the compiled schema documents. It is immutable after New
// and safe for concurrent use.
type Validator struct {
	docs map[string]document
	opts options
}

// New compiles the built-in documents plus any configured extras.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{docs: make(map[string]document)}
	for _, opt := range opts {
		if opt != nil {
			opt(&v.opts)
		}
	}

	for _, b := range builtinKinds {
		data, err := builtinDocuments.ReadFile(b.file)
		if err != nil {
			return nil, fmt.Errorf("read builtin schema %s: %w", b.file, err)
		}
		s, err := compileDocument(b.kind+".json", data)
		if err != nil {
			return nil, err
		}
		v.docs[b.kind] = document{schema: s, check: b.check}
	}

	if v.opts.documentsDir != "" {
		extra, err := readDocumentsDir(v.opts.documentsDir)
		if err != nil {
			return nil, err
		}
		for kind, data := range extra {
			s, err := compileDocument(kind+".json", data)
			if err != nil {
				return nil, err
			}
			d := v.docs[kind]
			d.schema = s
			v.docs[kind] = d
		}
	}
	return v, nil
}

// Kinds returns the registered document kinds, sorted.
func (v *Validator) Kinds() []string {
	kinds := make([]string, 0, len(v.docs))
	for k := range v.docs {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// HasKind reports whether a schema document is registered for kind.
func (v *Validator) HasKind(kind string) bool {
	_, ok := v.docs[kind]
	return ok
}

// Validate checks a decoded document (see Decode) against the kind's schema.
// It returns nil on conformance, a *ViolationError listing the violations in
// order, or an error wrapping ErrUnknownKind.
//
// Typed checks run first and give precise reasons; the compiled schema
// document is consulted only when they pass.
func (v *Validator) Validate(kind string, doc any) error {
	violations, err := v.Violations(kind, doc)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	return &ViolationError{Kind: kind, Violations: violations}
}

// Violations is Validate returning the bare list. An empty list means the document conforms.
func (v *Validator) Violations(kind string, doc any) ([]Violation, error) {
	d, ok := v.docs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if d.check != nil {
		if out := d.check(doc, &v.opts); len(out) > 0 {
			return out, nil
		}
	}
	if err := d.schema.Validate(doc); err != nil {
		return schemaViolations(err), nil
	}
	return nil, nil
}
