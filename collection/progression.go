package collection

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/ident"
)

// Progression is an ordered sequence of identifiers. Duplicates are allowed;
// an empty Progression is valid.
//
// A Progression is not safe for concurrent mutation. Owners such as Pile and
// Flow guard it with their own locks and only hand out clones.
type Progression struct {
	name  string
	order []ident.ID
}

// NewProgression creates a Progression with an optional name.
func NewProgression(name string, ids ...ident.ID) *Progression {
	return &Progression{name: name, order: append([]ident.ID(nil), ids...)}
}

// Name returns the progression name (may be empty).
func (p *Progression) Name() string { return p.name }

// SetName renames the progression.
func (p *Progression) SetName(name string) { p.name = name }

// Len returns the number of identifiers, counting duplicates.
func (p *Progression) Len() int { return len(p.order) }

// IsEmpty reports whether the progression holds no identifiers.
func (p *Progression) IsEmpty() bool { return len(p.order) == 0 }

// IDs returns a copy of the identifiers in order.
func (p *Progression) IDs() []ident.ID { return slices.Clone(p.order) }

// All iterates the identifiers in order.
func (p *Progression) All() iter.Seq[ident.ID] {
	return func(yield func(ident.ID) bool) {
		for _, id := range p.order {
			if !yield(id) {
				return
			}
		}
	}
}

// Append extends the sequence with every identifier in k. It never
// deduplicates.
func (p *Progression) Append(k entity.Key) error {
	if !k.Valid() {
		return invalidKey("append")
	}
	p.order = append(p.order, k.IDs()...)
	return nil
}

// Include adds each identifier in k that is not already present.
func (p *Progression) Include(k entity.Key) error {
	if !k.Valid() {
		return invalidKey("include")
	}
	k.Each(func(id ident.ID) {
		if !slices.Contains(p.order, id) {
			p.order = append(p.order, id)
		}
	})
	return nil
}

// Exclude removes every occurrence of each identifier in k. Absent
// identifiers and invalid keys are ignored.
func (p *Progression) Exclude(k entity.Key) {
	if k.Len() == 0 {
		return
	}
	drop := make(map[ident.ID]struct{}, k.Len())
	k.Each(func(id ident.ID) { drop[id] = struct{}{} })
	p.order = slices.DeleteFunc(p.order, func(id ident.ID) bool {
		_, ok := drop[id]
		return ok
	})
}

// Remove deletes the first occurrence of each identifier in k. If any
// identifier is missing the progression is left unchanged.
func (p *Progression) Remove(k entity.Key) error {
	if !k.Valid() {
		return invalidKey("remove")
	}
	next := slices.Clone(p.order)
	for _, id := range k.IDs() {
		i := slices.Index(next, id)
		if i < 0 {
			return notFound("progression has no %s", id)
		}
		next = slices.Delete(next, i, i+1)
	}
	p.order = next
	return nil
}

// Insert places the identifiers of k at index, shifting later elements.
// index must be within [0, Len()].
func (p *Progression) Insert(index int, k entity.Key) error {
	if !k.Valid() {
		return invalidKey("insert")
	}
	if index < 0 || index > len(p.order) {
		return outOfRange(index, len(p.order))
	}
	p.order = slices.Insert(p.order, index, k.IDs()...)
	return nil
}

// At returns the identifier at position i.
func (p *Progression) At(i int) (ident.ID, error) {
	if i < 0 || i >= len(p.order) {
		return "", notFound("index %d, length %d", i, len(p.order))
	}
	return p.order[i], nil
}

// SetAt replaces the identifier at position i.
func (p *Progression) SetAt(i int, id ident.ID) error {
	if id.IsZero() {
		return invalidKey("set at %d", i)
	}
	if i < 0 || i >= len(p.order) {
		return notFound("index %d, length %d", i, len(p.order))
	}
	p.order[i] = id
	return nil
}

// Slice returns a new, independent Progression holding positions [i, j).
func (p *Progression) Slice(i, j int) (*Progression, error) {
	if i < 0 || j > len(p.order) || i > j {
		return nil, outOfRange(i, len(p.order))
	}
	return NewProgression(p.name, p.order[i:j]...), nil
}

// Pop removes and returns the identifier at position i. Negative indices
// count from the end.
func (p *Progression) Pop(i int) (ident.ID, error) {
	if i < 0 {
		i += len(p.order)
	}
	if i < 0 || i >= len(p.order) {
		return "", notFound("pop index %d, length %d", i, len(p.order))
	}
	id := p.order[i]
	p.order = slices.Delete(p.order, i, i+1)
	return id, nil
}

// PopLeft removes and returns the first identifier.
func (p *Progression) PopLeft() (ident.ID, error) {
	if len(p.order) == 0 {
		return "", notFound("pop left on empty progression")
	}
	return p.Pop(0)
}

// Index returns the position of the first occurrence of id, or -1.
func (p *Progression) Index(id ident.ID) int { return slices.Index(p.order, id) }

// Count returns the number of occurrences of id.
func (p *Progression) Count(id ident.ID) int {
	n := 0
	for _, v := range p.order {
		if v == id {
			n++
		}
	}
	return n
}

// Contains reports whether every identifier in k is present.
func (p *Progression) Contains(k entity.Key) bool {
	if !k.Valid() || len(p.order) == 0 {
		return false
	}
	for _, id := range k.IDs() {
		if !slices.Contains(p.order, id) {
			return false
		}
	}
	return true
}

// Concat returns a new Progression holding p followed by other. Duplicates
// are preserved.
func (p *Progression) Concat(other *Progression) *Progression {
	out := NewProgression(p.name, p.order...)
	if other != nil {
		out.order = append(out.order, other.order...)
	}
	return out
}

// Extend appends other's identifiers to p in place.
func (p *Progression) Extend(other *Progression) {
	if other == nil {
		return
	}
	p.order = append(p.order, other.order...)
}

// Reverse returns a new Progression with the order reversed.
func (p *Progression) Reverse() *Progression {
	out := NewProgression(p.name, p.order...)
	slices.Reverse(out.order)
	return out
}

// Clear removes every identifier.
func (p *Progression) Clear() { p.order = p.order[:0] }

// Clone returns an independent copy.
func (p *Progression) Clone() *Progression { return NewProgression(p.name, p.order...) }

// Equal reports whether both progressions share name and order.
func (p *Progression) Equal(other *Progression) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.name == other.name && slices.Equal(p.order, other.order)
}

// String implements fmt.Stringer with a truncated preview.
func (p *Progression) String() string {
	preview := fmt.Sprint(p.order)
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	return fmt.Sprintf("Progression(name=%s, size=%d, items=%s)", p.name, len(p.order), preview)
}

type progressionJSON struct {
	Name  string     `json:"name,omitempty"`
	Order []ident.ID `json:"order"`
}

// MarshalJSON implements json.Marshaler.
func (p *Progression) MarshalJSON() ([]byte, error) {
	order := p.order
	if order == nil {
		order = []ident.ID{}
	}
	return json.Marshal(progressionJSON{Name: p.name, Order: order})
}

// UnmarshalJSON implements json.Unmarshaler. Empty identifiers are rejected.
func (p *Progression) UnmarshalJSON(data []byte) error {
	var raw progressionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, id := range raw.Order {
		if id.IsZero() {
			return invalidKey("empty identifier at position %d", i)
		}
	}
	p.name = raw.Name
	p.order = raw.Order
	return nil
}
