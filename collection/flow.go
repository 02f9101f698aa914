package collection

import (
	"slices"
	"sync"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/ident"
)

// FlowOptions configures a Flow.
type FlowOptions struct {
	// DefaultName is used whenever an operation is given an empty name.
	DefaultName string
}

// Flow groups named progressions, e.g. "pending" and "done" orderings over
// identifiers drawn from a shared Pile. It does not check that the
// identifiers exist anywhere; that relationship belongs to the caller.
//
// Names are enumerated in the order they were first added. A Flow is safe
// for concurrent use and only ever hands out clones of its progressions.
type Flow struct {
	mu          sync.RWMutex
	names       []string
	progs       map[string]*Progression
	defaultName string
}

// NewFlow creates an empty Flow.
func NewFlow(optFns ...func(o *FlowOptions)) *Flow {
	opts := FlowOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Flow{
		progs:       make(map[string]*Progression),
		defaultName: opts.DefaultName,
	}
}

// DefaultName returns the name used for empty-name operations.
func (f *Flow) DefaultName() string { return f.defaultName }

func (f *Flow) resolve(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if f.defaultName == "" {
		return "", invalidKey("empty progression name and no default")
	}
	return f.defaultName, nil
}

// put stores p under name. Callers hold the write lock.
func (f *Flow) put(name string, p *Progression) {
	if _, ok := f.progs[name]; !ok {
		f.names = append(f.names, name)
	}
	p.name = name
	f.progs[name] = p
}

// Get returns a copy of the named progression.
func (f *Flow) Get(name string) (*Progression, error) {
	name, err := f.resolve(name)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.progs[name]
	if !ok {
		return nil, notFound("flow has no progression %q", name)
	}

	return p.Clone(), nil
}

// Set stores a copy of p under name, replacing any existing progression while
// keeping the name's enumeration position. A nil p stores an empty one.
func (f *Flow) Set(name string, p *Progression) error {
	name, err := f.resolve(name)
	if err != nil {
		return err
	}

	cp := NewProgression(name)
	if p != nil {
		cp = p.Clone()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.put(name, cp)

	return nil
}

// Register adds p under its own name, or the default name when it has none.
// An existing progression with that name yields ErrItemExists.
func (f *Flow) Register(p *Progression) error {
	if p == nil {
		return invalidKey("nil progression")
	}

	name, err := f.resolve(p.Name())
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.progs[name]; ok {
		return errExistsName(name)
	}

	f.put(name, p.Clone())

	return nil
}

// Remove deletes the named progression.
func (f *Flow) Remove(name string) error {
	name, err := f.resolve(name)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.progs[name]; !ok {
		return notFound("flow has no progression %q", name)
	}

	delete(f.progs, name)
	f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })

	return nil
}

// Append includes the identifiers of k into the named progression, creating
// it when absent.
func (f *Flow) Append(name string, k entity.Key) error {
	name, err := f.resolve(name)
	if err != nil {
		return err
	}

	if !k.Valid() {
		return invalidKey("append to %q", name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.progs[name]
	if !ok {
		p = NewProgression(name)
		f.put(name, p)
	}

	return p.Include(k)
}

// Exclude removes the identifiers of k from the named progression. Unknown
// names and identifiers are ignored.
func (f *Flow) Exclude(name string, k entity.Key) {
	name, err := f.resolve(name)
	if err != nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.progs[name]; ok {
		p.Exclude(k)
	}
}

// ExcludeAll removes the identifiers of k from every progression.
func (f *Flow) ExcludeAll(k entity.Key) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.progs {
		p.Exclude(k)
	}
}

// PopLeft removes and returns the first identifier of the named progression.
func (f *Flow) PopLeft(name string) (ident.ID, error) {
	name, err := f.resolve(name)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.progs[name]
	if !ok {
		return "", notFound("flow has no progression %q", name)
	}

	return p.PopLeft()
}

// Names returns the progression names in enumeration order.
func (f *Flow) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.names)
}

// Has reports whether a progression with that name exists.
func (f *Flow) Has(name string) bool {
	name, err := f.resolve(name)
	if err != nil {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	_, ok := f.progs[name]

	return ok
}

// Len returns the number of progressions.
func (f *Flow) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.names)
}

// Size returns the total number of identifiers across all progressions,
// counting duplicates.
func (f *Flow) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := 0
	for _, p := range f.progs {
		n += p.Len()
	}

	return n
}

// Shape returns the length of each progression, aligned with Names().
func (f *Flow) Shape() []int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]int, len(f.names))
	for i, name := range f.names {
		out[i] = f.progs[name].Len()
	}

	return out
}

// Unique returns every distinct identifier, in first-seen order walking the
// progressions in enumeration order.
func (f *Flow) Unique() []ident.ID {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[ident.ID]struct{})

	var out []ident.ID
	for _, name := range f.names {
		for _, id := range f.progs[name].order {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}

// AllOrders returns copies of every progression in enumeration order.
func (f *Flow) AllOrders() []*Progression {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]*Progression, len(f.names))
	for i, name := range f.names {
		out[i] = f.progs[name].Clone()
	}

	return out
}

// Clear removes every progression.
func (f *Flow) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.names = nil
	f.progs = make(map[string]*Progression)
}
