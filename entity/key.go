package entity

import "github.com/hupe1980/meshcore/ident"

// Key references one or more identifiers. It is resolved once at the API
// boundary so collections never probe argument types at runtime.
//
// Build keys with ByID or Of:
//
//	p.Get(entity.ByID(id))
//	p.Exclude(entity.Of(a, b, c))
type Key struct {
	ids []ident.ID
}

// ByID builds a key from identifiers.
func ByID(ids ...ident.ID) Key {
	return Key{ids: append([]ident.ID(nil), ids...)}
}

// Of builds a key from entities.
func Of[T Entity](items ...T) Key {
	return Key{ids: IDs(items)}
}

// IDs returns a copy of the referenced identifiers.
func (k Key) IDs() []ident.ID {
	return append([]ident.ID(nil), k.ids...)
}

// Len returns the number of referenced identifiers.
func (k Key) Len() int { return len(k.ids) }

// Single returns the identifier when the key references exactly one.
func (k Key) Single() (ident.ID, bool) {
	if len(k.ids) != 1 {
		return "", false
	}
	return k.ids[0], true
}

// Valid reports whether the key references at least one identifier and none
// of them is empty.
func (k Key) Valid() bool {
	if len(k.ids) == 0 {
		return false
	}
	for _, id := range k.ids {
		if id.IsZero() {
			return false
		}
	}
	return true
}

// Each calls fn for every referenced identifier in order.
func (k Key) Each(fn func(ident.ID)) {
	for _, id := range k.ids {
		fn(id)
	}
}
