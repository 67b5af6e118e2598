// Package sequence generates validation result identifiers.
package sequence

import (
	"fmt"
	"sync/atomic"
)

// Generator issues process-unique, monotonically numbered IDs.
type Generator struct {
	counter uint64
}

// New returns a Generator whose first ID ends in 1.
func New() *Generator {
	return &Generator{}
}

// Next returns "<source>-val-<n>".
func (g *Generator) Next(source string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-val-%d", source, n)
}
