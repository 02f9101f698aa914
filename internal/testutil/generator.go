package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/meshcore/ident"
)

// SeqGenerator mints readable, deterministic identifiers ("e-0000", "e-0001", ...).
// Use it where test output or assertions depend on identifier values.
type SeqGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSeqGenerator creates a generator with the given prefix ("e" when empty).
func NewSeqGenerator(prefix string) *SeqGenerator {
	if prefix == "" {
		prefix = "e"
	}
	return &SeqGenerator{prefix: prefix}
}

// NewID implements ident.Generator.
func (g *SeqGenerator) NewID() ident.ID {
	n := g.next.Add(1) - 1
	return ident.ID(fmt.Sprintf("%s-%04d", g.prefix, n))
}

var _ ident.Generator = (*SeqGenerator)(nil)
