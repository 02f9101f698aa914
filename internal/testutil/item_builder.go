package testutil

import (
	"time"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/ident"
)

// Kinds shared by tests. SubKind specializes BaseKind; OtherKind is unrelated.
var (
	BaseKind  = entity.NewKind("Base", entity.ElementKind)
	SubKind   = entity.NewKind("Sub", BaseKind)
	OtherKind = entity.NewKind("Other", entity.ElementKind)
)

// Item is a minimal entity carrying a label, used as the element type of test
// piles.
type Item struct {
	entity.Element
	Label string
}

// ItemBuilder provides a fluent helper for constructing items in tests.
// Example:
//
//	it := NewItemBuilder(gen).Kind(SubKind).Label("x").Build()
//
// Chain only the parts you need; the default kind is BaseKind.
type ItemBuilder struct {
	gen   ident.Generator
	id    ident.ID
	kind  *entity.Kind
	label string
}

// NewItemBuilder creates a builder drawing identifiers from gen.
func NewItemBuilder(gen ident.Generator) *ItemBuilder {
	return &ItemBuilder{gen: gen, kind: BaseKind}
}

// ID overrides the generated identifier (chainable).
func (b *ItemBuilder) ID(id ident.ID) *ItemBuilder { b.id = id; return b }

// Kind sets the item kind (chainable).
func (b *ItemBuilder) Kind(k *entity.Kind) *ItemBuilder { b.kind = k; return b }

// Label sets the payload label (chainable).
func (b *ItemBuilder) Label(l string) *ItemBuilder { b.label = l; return b }

// Build returns the item. With an explicit ID the generator is not
// consulted and may be nil.
func (b *ItemBuilder) Build() *Item {
	if b.id != "" {
		return &Item{Element: entity.ElementWithID(b.id, b.kind, time.Now().UTC()), Label: b.label}
	}
	return &Item{Element: entity.NewElement(b.gen, b.kind), Label: b.label}
}

// Items builds n items of BaseKind labelled by their position.
func Items(gen ident.Generator, n int) []*Item {
	out := make([]*Item, n)
	for i := range out {
		out[i] = NewItemBuilder(gen).Label(string(rune('a' + i%26))).Build()
	}
	return out
}
