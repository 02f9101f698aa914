// Package entity defines the capability every item stored in a collection must
// offer: a stable identifier and a kind tag. The concrete taxonomy of kinds is
// owned by callers; this package only provides the tag type, a registry for
// callers that want one, and an embeddable Element base.
package entity

import (
	"time"

	"github.com/hupe1980/meshcore/ident"
)

// Entity is anything with a readable, stable identifier and a kind tag.
type Entity interface {
	ID() ident.ID
	Kind() *Kind
}

// Element is an embeddable base implementing Entity. It is immutable after
// construction.
type Element struct {
	id      ident.ID
	kind    *Kind
	created time.Time
}

// NewElement mints a new element of the given kind using gen.
func NewElement(gen ident.Generator, kind *Kind) Element {
	return Element{id: gen.NewID(), kind: kind, created: time.Now().UTC()}
}

// ElementWithID builds an element around an existing identifier, e.g. when
// rehydrating records produced elsewhere.
func ElementWithID(id ident.ID, kind *Kind, created time.Time) Element {
	return Element{id: id, kind: kind, created: created}
}

// ID returns the element identifier.
func (e Element) ID() ident.ID { return e.id }

// Kind returns the element kind.
func (e Element) Kind() *Kind { return e.kind }

// Created returns the UTC creation timestamp.
func (e Element) Created() time.Time { return e.created }

// IDs projects a slice of entities onto their identifiers.
func IDs[T Entity](items []T) []ident.ID {
	ids := make([]ident.ID, len(items))
	for i, it := range items {
		ids[i] = it.ID()
	}
	return ids
}
