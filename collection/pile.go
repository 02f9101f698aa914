package collection

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/ident"
)

// PileOptions configures a Pile at construction time.
type PileOptions struct {
	// Kinds restricts admissible entity kinds. Empty means unconstrained.
	Kinds []*entity.Kind
	// Order is an explicit initial ordering. It must be a permutation of the
	// identifiers of the initial items.
	Order []ident.ID
	// Strict admits only exact kind matches; otherwise specializations of an
	// admissible kind are accepted too.
	Strict bool
}

// Item pairs an identifier with its entity, as returned by Pile.Items.
type Item[T entity.Entity] struct {
	ID    ident.ID
	Value T
}

// Pile is an identifier-unique, order-preserving container of entities. It
// behaves both as a sequence (positional access follows insertion order) and
// as a map keyed by identifier.
//
// The order and the map always hold exactly the same identifiers. Every
// mutating call validates its input first and either applies completely or
// leaves the Pile untouched. A Pile is safe for concurrent use.
type Pile[T entity.Entity] struct {
	mu     sync.RWMutex
	items  map[ident.ID]T
	prog   *Progression
	kinds  []*entity.Kind
	strict bool
}

// NewPile creates a Pile holding items. Items sharing an identifier are
// upserted: the later value wins and keeps the first position.
func NewPile[T entity.Entity](items []T, optFns ...func(o *PileOptions)) (*Pile[T], error) {
	opts := PileOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	p := newPile[T](slices.Clone(opts.Kinds), opts.Strict)

	if err := p.check(items); err != nil {
		return nil, err
	}

	p.upsert(items)

	if opts.Order != nil {
		if err := p.reorder(opts.Order); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// NewPileFrom returns an independent copy of other sharing its kind policy.
func NewPileFrom[T entity.Entity](other *Pile[T]) *Pile[T] {
	return other.Clone()
}

func newPile[T entity.Entity](kinds []*entity.Kind, strict bool) *Pile[T] {
	return &Pile[T]{
		items:  make(map[ident.ID]T),
		prog:   NewProgression(""),
		kinds:  kinds,
		strict: strict,
	}
}

// derive creates an empty Pile with the same kind policy as p. kinds and
// strict never change after construction, so no lock is required.
func (p *Pile[T]) derive() *Pile[T] {
	return newPile[T](p.kinds, p.strict)
}

func (p *Pile[T]) admits(k *entity.Kind) bool {
	if len(p.kinds) == 0 {
		return true
	}

	for _, want := range p.kinds {
		if p.strict {
			if k == want {
				return true
			}
		} else if k.IsA(want) {
			return true
		}
	}

	return false
}

// check validates identifiers and kinds of incoming items without touching
// state.
func (p *Pile[T]) check(items []T) error {
	for _, it := range items {
		if it.ID().IsZero() {
			return invalidKey("item with empty identifier")
		}

		if !p.admits(it.Kind()) {
			return &TypeMismatchError{Expected: slices.Clone(p.kinds), Actual: it.Kind(), Strict: p.strict}
		}
	}

	return nil
}

// upsert overwrites known identifiers in place and appends new ones. Callers
// hold the write lock and have validated items.
func (p *Pile[T]) upsert(items []T) {
	for _, it := range items {
		id := it.ID()
		if _, ok := p.items[id]; !ok {
			p.prog.order = append(p.prog.order, id)
		}
		p.items[id] = it
	}
}

func (p *Pile[T]) reorder(order []ident.ID) error {
	if len(order) != len(p.items) {
		return invalidOrder("order has %d identifiers, pile has %d", len(order), len(p.items))
	}

	seen := make(map[ident.ID]struct{}, len(order))
	for _, id := range order {
		if _, ok := p.items[id]; !ok {
			return invalidOrder("unknown identifier %s", id)
		}
		if _, dup := seen[id]; dup {
			return invalidOrder("duplicate identifier %s", id)
		}
		seen[id] = struct{}{}
	}

	p.prog.order = slices.Clone(order)

	return nil
}

// uniqueNew verifies items carry distinct identifiers that are not already in
// the Pile, ignoring identifiers listed in replaced.
func (p *Pile[T]) uniqueNew(items []T, replaced map[ident.ID]struct{}) error {
	seen := make(map[ident.ID]struct{}, len(items))

	for _, it := range items {
		id := it.ID()
		if _, dup := seen[id]; dup {
			return exists(id)
		}
		seen[id] = struct{}{}

		if _, ok := p.items[id]; ok {
			if _, r := replaced[id]; !r {
				return exists(id)
			}
		}
	}

	return nil
}

func (p *Pile[T]) valuesOf(ids []ident.ID) []T {
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = p.items[id]
	}
	return out
}

// snapshot returns the order and the entities under the read lock.
func (p *Pile[T]) snapshot() ([]ident.ID, []T) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ids := slices.Clone(p.prog.order)

	return ids, p.valuesOf(ids)
}

// Get returns the entity referenced by a single-identifier key.
func (p *Pile[T]) Get(k entity.Key) (T, error) {
	var zero T

	id, ok := k.Single()
	if !ok || id.IsZero() {
		return zero, invalidKey("get expects a single identifier, got %d", k.Len())
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	it, ok := p.items[id]
	if !ok {
		return zero, notFound("pile has no %s", id)
	}

	return it, nil
}

// GetOr returns the entity for k, or def when it cannot be resolved.
func (p *Pile[T]) GetOr(k entity.Key, def T) T {
	it, err := p.Get(k)
	if err != nil {
		return def
	}
	return it
}

// At returns the entity at position i.
func (p *Pile[T]) At(i int) (T, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	id, err := p.prog.At(i)
	if err != nil {
		var zero T
		return zero, err
	}

	return p.items[id], nil
}

// Slice returns a new Pile holding positions [i, j).
func (p *Pile[T]) Slice(i, j int) (*Pile[T], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sub, err := p.prog.Slice(i, j)
	if err != nil {
		return nil, err
	}

	out := p.derive()
	out.upsert(p.valuesOf(sub.order))

	return out, nil
}

// Select returns a new Pile with the entities referenced by k, in this Pile's
// relative order. Every identifier must be present. An empty key selects an
// empty Pile.
func (p *Pile[T]) Select(k entity.Key) (*Pile[T], error) {
	if k.Len() == 0 {
		return p.derive(), nil
	}
	if !k.Valid() {
		return nil, invalidKey("select")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	want := make(map[ident.ID]struct{}, k.Len())
	for _, id := range k.IDs() {
		if _, ok := p.items[id]; !ok {
			return nil, notFound("pile has no %s", id)
		}
		want[id] = struct{}{}
	}

	out := p.derive()
	for _, id := range p.prog.order {
		if _, ok := want[id]; ok {
			out.upsert([]T{p.items[id]})
		}
	}

	return out, nil
}

// Set overwrites the entity stored under id, keeping its position. The
// identifier must already be present and item must carry the same
// identifier. Use Update to insert-or-overwrite.
func (p *Pile[T]) Set(id ident.ID, item T) error {
	if id.IsZero() {
		return invalidKey("set with empty identifier")
	}

	if err := p.check([]T{item}); err != nil {
		return err
	}

	if item.ID() != id {
		return invalidKey("set %s with item %s", id, item.ID())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.items[id]; !ok {
		return notFound("pile has no %s", id)
	}

	p.items[id] = item

	return nil
}

// SetAt replaces the entity at position i with item. The new identifier must
// not exist elsewhere in the Pile.
func (p *Pile[T]) SetAt(i int, item T) error {
	if err := p.check([]T{item}); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old, err := p.prog.At(i)
	if err != nil {
		return err
	}

	if err := p.uniqueNew([]T{item}, map[ident.ID]struct{}{old: {}}); err != nil {
		return err
	}

	delete(p.items, old)
	p.prog.order[i] = item.ID()
	p.items[item.ID()] = item

	return nil
}

// SetSlice replaces positions [i, j) with items. Incoming identifiers must be
// distinct and must not exist outside the replaced range.
func (p *Pile[T]) SetSlice(i, j int, items ...T) error {
	if err := p.check(items); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || j > len(p.prog.order) || i > j {
		return outOfRange(i, len(p.prog.order))
	}

	replaced := make(map[ident.ID]struct{}, j-i)
	for _, id := range p.prog.order[i:j] {
		replaced[id] = struct{}{}
	}

	if err := p.uniqueNew(items, replaced); err != nil {
		return err
	}

	for id := range replaced {
		delete(p.items, id)
	}

	p.prog.order = slices.Replace(p.prog.order, i, j, entity.IDs(items)...)
	for _, it := range items {
		p.items[it.ID()] = it
	}

	return nil
}

// Include adds every item whose identifier is not yet present. Present
// identifiers keep their current entity. Calling Include twice with the same
// items is equivalent to calling it once.
func (p *Pile[T]) Include(items ...T) error {
	if err := p.check(items); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, it := range items {
		if _, ok := p.items[it.ID()]; ok {
			continue
		}
		p.upsert([]T{it})
	}

	return nil
}

// Exclude removes the referenced entities that are present. It never fails.
func (p *Pile[T]) Exclude(k entity.Key) {
	if k.Len() == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.drop(k.IDs())
}

func (p *Pile[T]) drop(ids []ident.ID) {
	gone := make(map[ident.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := p.items[id]; ok {
			gone[id] = struct{}{}
			delete(p.items, id)
		}
	}

	if len(gone) == 0 {
		return
	}

	p.prog.order = slices.DeleteFunc(p.prog.order, func(id ident.ID) bool {
		_, ok := gone[id]
		return ok
	})
}

// Remove deletes the referenced entities. If any identifier is absent the
// Pile is left unchanged and ErrItemNotFound is returned.
func (p *Pile[T]) Remove(k entity.Key) error {
	_, err := p.PopMany(k)
	return err
}

// Pop removes and returns the entity referenced by a single-identifier key.
func (p *Pile[T]) Pop(k entity.Key) (T, error) {
	var zero T

	id, ok := k.Single()
	if !ok || id.IsZero() {
		return zero, invalidKey("pop expects a single identifier, got %d", k.Len())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	it, ok := p.items[id]
	if !ok {
		return zero, notFound("pile has no %s", id)
	}

	p.drop([]ident.ID{id})

	return it, nil
}

// PopOr removes and returns the entity for k, or returns def when absent.
func (p *Pile[T]) PopOr(k entity.Key, def T) T {
	it, err := p.Pop(k)
	if err != nil {
		return def
	}
	return it
}

// PopAt removes and returns the entity at position i. Negative indices count
// from the end.
func (p *Pile[T]) PopAt(i int) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.prog.Pop(i)
	if err != nil {
		var zero T
		return zero, err
	}

	it := p.items[id]
	delete(p.items, id)

	return it, nil
}

// PopMany removes every entity referenced by k and returns them as a new
// Pile in this Pile's relative order. All identifiers must be present.
func (p *Pile[T]) PopMany(k entity.Key) (*Pile[T], error) {
	if !k.Valid() {
		return nil, invalidKey("pop")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	want := make(map[ident.ID]struct{}, k.Len())
	for _, id := range k.IDs() {
		if _, ok := p.items[id]; !ok {
			return nil, notFound("pile has no %s", id)
		}
		want[id] = struct{}{}
	}

	out := p.derive()
	for _, id := range p.prog.order {
		if _, ok := want[id]; ok {
			out.upsert([]T{p.items[id]})
		}
	}

	p.drop(out.prog.order)

	return out, nil
}

// Append adds items at the end. Identifiers already present, or repeated
// within items, are rejected with ErrItemExists.
func (p *Pile[T]) Append(items ...T) error {
	if err := p.check(items); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.uniqueNew(items, nil); err != nil {
		return err
	}

	p.upsert(items)

	return nil
}

// Insert places items at index, shifting later entries. index must be within
// [0, Len()] and identifiers must be new.
func (p *Pile[T]) Insert(index int, items ...T) error {
	if err := p.check(items); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index > len(p.prog.order) {
		return outOfRange(index, len(p.prog.order))
	}

	if err := p.uniqueNew(items, nil); err != nil {
		return err
	}

	p.prog.order = slices.Insert(p.prog.order, index, entity.IDs(items)...)
	for _, it := range items {
		p.items[it.ID()] = it
	}

	return nil
}

// Update upserts items: known identifiers are overwritten in place, new ones
// are appended in first-seen order.
func (p *Pile[T]) Update(items ...T) error {
	if err := p.check(items); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.upsert(items)

	return nil
}

// UpdateFrom upserts every entity of other, in other's order.
func (p *Pile[T]) UpdateFrom(other *Pile[T]) error {
	_, vals := other.snapshot()
	return p.Update(vals...)
}

// Clear removes every entity.
func (p *Pile[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = make(map[ident.ID]T)
	p.prog.Clear()
}

// Drain atomically removes and returns every entity in order.
func (p *Pile[T]) Drain() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.valuesOf(p.prog.order)
	p.items = make(map[ident.ID]T)
	p.prog.order = nil

	return out
}

// Keys returns the identifiers in order.
func (p *Pile[T]) Keys() []ident.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return slices.Clone(p.prog.order)
}

// Values returns the entities in order.
func (p *Pile[T]) Values() []T {
	_, vals := p.snapshot()
	return vals
}

// Items returns identifier/entity pairs in order.
func (p *Pile[T]) Items() []Item[T] {
	ids, vals := p.snapshot()

	out := make([]Item[T], len(ids))
	for i := range ids {
		out[i] = Item[T]{ID: ids[i], Value: vals[i]}
	}

	return out
}

// All iterates a snapshot of the Pile in order. The Pile may be mutated from
// inside the loop body.
func (p *Pile[T]) All() iter.Seq2[ident.ID, T] {
	return func(yield func(ident.ID, T) bool) {
		ids, vals := p.snapshot()
		for i := range ids {
			if !yield(ids[i], vals[i]) {
				return
			}
		}
	}
}

// Order returns a copy of the Pile's progression.
func (p *Pile[T]) Order() *Progression {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.prog.Clone()
}

// Contains reports whether every identifier in k is present.
func (p *Pile[T]) Contains(k entity.Key) bool {
	if !k.Valid() {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, id := range k.IDs() {
		if _, ok := p.items[id]; !ok {
			return false
		}
	}

	return true
}

// Len returns the number of entities.
func (p *Pile[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.prog.order)
}

// IsEmpty reports whether the Pile holds no entities.
func (p *Pile[T]) IsEmpty() bool { return p.Len() == 0 }

// Equal reports whether both Piles hold the same identifiers in the same
// order. Entity values are not compared.
func (p *Pile[T]) Equal(other *Pile[T]) bool {
	if other == nil {
		return false
	}

	theirs := other.Keys()

	return slices.Equal(p.Keys(), theirs)
}

// SameMembers reports whether both Piles hold the same identifier set,
// regardless of order.
func (p *Pile[T]) SameMembers(other *Pile[T]) bool {
	if other == nil {
		return false
	}

	theirs := other.Keys()

	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(theirs) != len(p.items) {
		return false
	}

	for _, id := range theirs {
		if _, ok := p.items[id]; !ok {
			return false
		}
	}

	return true
}

// Clone returns an independent Pile with the same entities, order and kind
// policy. Entities themselves are shared.
func (p *Pile[T]) Clone() *Pile[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := p.derive()
	out.upsert(p.valuesOf(p.prog.order))

	return out
}

// Kinds returns the admissible kinds (nil when unconstrained).
func (p *Pile[T]) Kinds() []*entity.Kind { return slices.Clone(p.kinds) }

// Strict reports whether only exact kinds are admitted.
func (p *Pile[T]) Strict() bool { return p.strict }

// String implements fmt.Stringer.
func (p *Pile[T]) String() string { return fmt.Sprintf("Pile(%d)", p.Len()) }

// consistent reports whether order and map hold the same identifier set.
func (p *Pile[T]) consistent() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.prog.order) != len(p.items) {
		return false
	}

	for _, id := range p.prog.order {
		if _, ok := p.items[id]; !ok {
			return false
		}
	}

	return true
}
