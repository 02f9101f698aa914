package entity

import (
	"testing"

	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_IsA(t *testing.T) {
	base := NewKind("Base", nil)
	mid := NewKind("Mid", base)
	leaf := NewKind("Leaf", mid)
	other := NewKind("Other", nil)

	assert.True(t, leaf.IsA(leaf))
	assert.True(t, leaf.IsA(mid))
	assert.True(t, leaf.IsA(base))
	assert.False(t, base.IsA(leaf))
	assert.False(t, leaf.IsA(other))
	assert.False(t, leaf.IsA(nil))

	// Same name, different kind.
	assert.False(t, NewKind("Base", nil).IsA(base))
}

func TestKind_NilSafe(t *testing.T) {
	var k *Kind
	assert.Equal(t, "<nil>", k.Name())
	assert.Nil(t, k.Parent())
	assert.False(t, k.IsA(ElementKind))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	node, err := r.Register("Node", "")
	require.NoError(t, err)
	msg, err := r.Register("Message", "Node")
	require.NoError(t, err)
	assert.True(t, msg.IsA(node))

	_, err = r.Register("Message", "Node")
	assert.True(t, errors.Is(err, ErrKindExists))
	_, err = r.Register("Orphan", "Missing")
	assert.True(t, errors.Is(err, ErrUnknownKind))
	_, err = r.Register("", "")
	assert.True(t, errors.Is(err, ErrInvalidKind))

	got, ok := r.Lookup("Message")
	require.True(t, ok)
	assert.Same(t, msg, got)

	kinds, err := r.Resolve("Node", "Message")
	require.NoError(t, err)
	assert.Equal(t, []*Kind{node, msg}, kinds)

	_, err = r.Resolve("Node", "Nope")
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Contains(t, err.Error(), "Nope")
}

func TestRegistry_AddWithAncestors(t *testing.T) {
	r := NewRegistry()
	leaf := NewKind("Leaf", NewKind("Root", nil))
	r.Add(leaf)

	_, ok := r.Lookup("Root")
	assert.True(t, ok)
	got, ok := r.Lookup("Leaf")
	require.True(t, ok)
	assert.Same(t, leaf, got)
}

func TestElement(t *testing.T) {
	gen := ident.NewGenerator()
	e := NewElement(gen, ElementKind)

	assert.False(t, e.ID().IsZero())
	assert.Same(t, ElementKind, e.Kind())
	assert.False(t, e.Created().IsZero())

	var _ Entity = e
}

func TestKey(t *testing.T) {
	gen := ident.NewGenerator()
	a, b := NewElement(gen, ElementKind), NewElement(gen, ElementKind)

	k := Of(a, b)
	assert.Equal(t, 2, k.Len())
	assert.Equal(t, []ident.ID{a.ID(), b.ID()}, k.IDs())
	assert.True(t, k.Valid())
	_, single := k.Single()
	assert.False(t, single)

	id, single := ByID(a.ID()).Single()
	assert.True(t, single)
	assert.Equal(t, a.ID(), id)

	assert.False(t, ByID().Valid())
	assert.False(t, ByID(a.ID(), "").Valid())

	// IDs returns a copy.
	ids := k.IDs()
	ids[0] = "changed"
	assert.Equal(t, a.ID(), k.IDs()[0])
}
