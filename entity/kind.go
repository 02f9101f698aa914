package entity

import (
	"sync"

	"github.com/hupe1980/meshcore/errors"
)

var (
	// ErrUnknownKind is returned when a kind name is not registered.
	ErrUnknownKind = errors.New("unknown kind")
	// ErrKindExists is returned when a kind name is registered twice.
	ErrKindExists = errors.New("kind already registered")
	// ErrInvalidKind is returned for an empty kind name.
	ErrInvalidKind = errors.New("invalid kind")
)

// Kind tags an entity with its type in the caller's taxonomy. Kinds form a
// tree through their parent link; identity is pointer identity.
type Kind struct {
	name   string
	parent *Kind
}

// NewKind creates a kind. parent may be nil for a root kind.
func NewKind(name string, parent *Kind) *Kind {
	return &Kind{name: name, parent: parent}
}

// ElementKind is the root kind used by Element-derived values that do not
// declare anything more specific.
var ElementKind = NewKind("Element", nil)

// Name returns the kind name.
func (k *Kind) Name() string {
	if k == nil {
		return "<nil>"
	}
	return k.name
}

// Parent returns the parent kind or nil.
func (k *Kind) Parent() *Kind {
	if k == nil {
		return nil
	}
	return k.parent
}

// IsA reports whether k is target or a specialization of it.
func (k *Kind) IsA(target *Kind) bool {
	if target == nil {
		return false
	}
	for cur := k; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (k *Kind) String() string { return k.Name() }

// Registry maps kind names to kinds. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register creates and stores a kind under name. The parent, when non-empty,
// must already be registered.
func (r *Registry) Register(name, parent string) (*Kind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return nil, errors.WrapSentinel(ErrInvalidKind, "empty name")
	}
	if _, exists := r.kinds[name]; exists {
		return nil, errors.WrapSentinel(ErrKindExists, "kind %s", name)
	}

	var p *Kind
	if parent != "" {
		var ok bool
		if p, ok = r.kinds[parent]; !ok {
			return nil, errors.WrapSentinel(ErrUnknownKind, "parent kind %s", parent)
		}
	}

	k := NewKind(name, p)
	r.kinds[name] = k
	return k, nil
}

// Add stores an existing kind (and its ancestors) by name.
func (r *Registry) Add(k *Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for cur := k; cur != nil; cur = cur.parent {
		if _, exists := r.kinds[cur.name]; !exists {
			r.kinds[cur.name] = cur
		}
	}
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Resolve looks up several kind names at once.
func (r *Registry) Resolve(names ...string) ([]*Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Kind, 0, len(names))
	for _, n := range names {
		k, ok := r.kinds[n]
		if !ok {
			return nil, errors.WrapSentinel(ErrUnknownKind, "kind %s", n)
		}
		out = append(out, k)
	}
	return out, nil
}
