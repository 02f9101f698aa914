// Package ident defines the identifier type shared by every entity in
// meshcore together with the injectable Generator that mints new values.
//
// Identifiers are opaque: they carry no ordering semantics beyond equality,
// and an identifier is never reused once issued.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// ID is the strong type for entity identifiers. Use it instead of free-form
// strings so identifiers cannot be mixed up with names or payloads.
type ID string

// String returns the identifier as a plain string.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

// Short returns a truncated form suitable for log lines.
func (id ID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}

// Generator mints identifiers. Implementations must be safe for concurrent use
// and must never return the same value twice.
type Generator interface {
	NewID() ID
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() ID

// NewID calls f.
func (f GeneratorFunc) NewID() ID { return f() }

// DefaultPrefix is prepended to identifiers minted by DefaultGenerator.
const DefaultPrefix = "ln"

// GeneratorOptions configures a DefaultGenerator.
type GeneratorOptions struct {
	// Prefix is prepended to every identifier. Defaults to DefaultPrefix.
	Prefix string
	// Rand is the randomness source. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// DefaultGenerator combines a monotonic counter with a random UUID so
// identifiers stay unique even when the randomness source is deterministic
// (tests) or shared between generators.
//
// Layout: <prefix><counter as 8 hex digits><uuid v4 as 32 hex digits>
type DefaultGenerator struct {
	prefix  string
	rand    io.Reader
	counter atomic.Uint64
}

// NewGenerator returns a DefaultGenerator with optional overrides.
func NewGenerator(optFns ...func(o *GeneratorOptions)) *DefaultGenerator {
	opts := GeneratorOptions{
		Prefix: DefaultPrefix,
		Rand:   rand.Reader,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}

	return &DefaultGenerator{prefix: opts.Prefix, rand: opts.Rand}
}

// NewID mints a fresh identifier.
func (g *DefaultGenerator) NewID() ID {
	n := g.counter.Add(1)

	u, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		// The counter is only unique within one generator, so a failing
		// reader falls back to crypto/rand. uuid.New panics if that fails too.
		u = uuid.New()
	}

	var b strings.Builder
	b.Grow(len(g.prefix) + 8 + 32)
	b.WriteString(g.prefix)
	fmt.Fprintf(&b, "%08x", n)
	b.WriteString(hex.EncodeToString(u[:]))

	return ID(b.String())
}

// Issued returns how many identifiers this generator has minted.
func (g *DefaultGenerator) Issued() uint64 { return g.counter.Load() }

// Prefix returns the configured prefix.
func (g *DefaultGenerator) Prefix() string { return g.prefix }
