package collection

import (
	"slices"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/ident"
)

// Set algebra is defined over identifier membership, never over entity value
// equality. Results inherit the kind policy of the left operand; the right
// operand is snapshotted before the left one is locked so both orders of
// locking are safe.

type operand[T any] struct {
	ids  []ident.ID
	vals []T
	set  map[ident.ID]struct{}
}

func snapshotOf[T entity.Entity](p *Pile[T]) operand[T] {
	ids, vals := p.snapshot()

	set := make(map[ident.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return operand[T]{ids: ids, vals: vals, set: set}
}

func (o operand[T]) has(id ident.ID) bool {
	_, ok := o.set[id]
	return ok
}

// missingFrom returns the entities of o whose identifiers are absent from p. Callers
// hold p's lock.
func (p *Pile[T]) missingFrom(o operand[T]) []T {
	var out []T
	for i, id := range o.ids {
		if _, ok := p.items[id]; !ok {
			out = append(out, o.vals[i])
		}
	}
	return out
}

// keepIf retains the entries whose identifiers satisfy keep, in order. Callers
// hold p's write lock.
func (p *Pile[T]) keepIf(keep func(ident.ID) bool) {
	p.prog.order = slices.DeleteFunc(p.prog.order, func(id ident.ID) bool {
		if keep(id) {
			return false
		}
		delete(p.items, id)
		return true
	})
}

// Union returns the entities present in either Pile, left entries first. On
// identifier collisions the left entity wins. Entities of other must satisfy
// p's kind policy.
func (p *Pile[T]) Union(other *Pile[T]) (*Pile[T], error) {
	out := p.Clone()
	if err := out.UnionWith(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Intersection returns the entities of p whose identifiers are also in other.
func (p *Pile[T]) Intersection(other *Pile[T]) (*Pile[T], error) {
	out := p.Clone()
	if err := out.IntersectWith(other); err != nil {
		return nil, err
	}
	return out, nil
}

// SymmetricDifference returns the entities present in exactly one Pile: the
// left-only entries in left order followed by the right-only entries.
func (p *Pile[T]) SymmetricDifference(other *Pile[T]) (*Pile[T], error) {
	out := p.Clone()
	if err := out.SymmetricDifferenceWith(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Difference returns the entities of p whose identifiers are not in other.
func (p *Pile[T]) Difference(other *Pile[T]) (*Pile[T], error) {
	out := p.Clone()
	if err := out.DifferenceWith(other); err != nil {
		return nil, err
	}
	return out, nil
}

// UnionWith adds the entities of other that p does not hold yet.
func (p *Pile[T]) UnionWith(other *Pile[T]) error {
	if other == nil {
		return nil
	}

	o := snapshotOf(other)

	p.mu.Lock()
	defer p.mu.Unlock()

	add := p.missingFrom(o)
	if err := p.check(add); err != nil {
		return err
	}

	p.upsert(add)

	return nil
}

// IntersectWith keeps only the entries whose identifiers are in other,
// preserving p's relative order.
func (p *Pile[T]) IntersectWith(other *Pile[T]) error {
	var o operand[T]
	if other != nil {
		o = snapshotOf(other)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.keepIf(o.has)

	return nil
}

// SymmetricDifferenceWith drops shared identifiers from p and appends the
// entities only other holds.
func (p *Pile[T]) SymmetricDifferenceWith(other *Pile[T]) error {
	if other == nil {
		return nil
	}

	o := snapshotOf(other)

	p.mu.Lock()
	defer p.mu.Unlock()

	add := p.missingFrom(o)
	if err := p.check(add); err != nil {
		return err
	}

	p.keepIf(func(id ident.ID) bool { return !o.has(id) })
	p.upsert(add)

	return nil
}

// DifferenceWith removes every identifier held by other.
func (p *Pile[T]) DifferenceWith(other *Pile[T]) error {
	if other == nil {
		return nil
	}

	o := snapshotOf(other)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.keepIf(func(id ident.ID) bool { return !o.has(id) })

	return nil
}
