package collection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
)

func ids(vals ...string) []ident.ID {
	out := make([]ident.ID, len(vals))
	for i, v := range vals {
		out[i] = ident.ID(v)
	}
	return out
}

func TestProgression_AppendKeepsDuplicates(t *testing.T) {
	p := NewProgression("p", ids("a", "b")...)
	require.NoError(t, p.Append(entity.ByID(ids("a", "c")...)))
	assert.Equal(t, ids("a", "b", "a", "c"), p.IDs())
	assert.Equal(t, 2, p.Count("a"))

	err := p.Append(entity.ByID())
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestProgression_IncludeIsIdempotent(t *testing.T) {
	p := NewProgression("")
	require.NoError(t, p.Include(entity.ByID(ids("a", "b")...)))
	require.NoError(t, p.Include(entity.ByID(ids("b", "a", "c")...)))
	assert.Equal(t, ids("a", "b", "c"), p.IDs())
}

func TestProgression_ExcludeRemovesAllOccurrences(t *testing.T) {
	p := NewProgression("", ids("a", "b", "a", "c", "a")...)
	p.Exclude(entity.ByID("a"))
	assert.Equal(t, ids("b", "c"), p.IDs())

	before := p.Clone()
	p.Exclude(entity.ByID("zzz"))
	p.Exclude(entity.ByID())
	assert.True(t, before.Equal(p))
}

func TestProgression_RemoveFirstOccurrence(t *testing.T) {
	p := NewProgression("", ids("a", "b", "a")...)
	require.NoError(t, p.Remove(entity.ByID("a")))
	assert.Equal(t, ids("b", "a"), p.IDs())

	err := p.Remove(entity.ByID("b", "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrItemNotFound))
	assert.Equal(t, ids("b", "a"), p.IDs(), "failed remove must not change the progression")
}

func TestProgression_Insert(t *testing.T) {
	p := NewProgression("", ids("a", "d")...)
	require.NoError(t, p.Insert(1, entity.ByID("b", "c")))
	assert.Equal(t, ids("a", "b", "c", "d"), p.IDs())
	require.NoError(t, p.Insert(4, entity.ByID("e")))
	assert.Equal(t, "e", p.IDs()[4].String())

	for _, idx := range []int{-1, 6} {
		err := p.Insert(idx, entity.ByID("x"))
		assert.True(t, errors.Is(err, ErrIndexOutOfRange), "index %d", idx)
	}
	assert.Equal(t, 5, p.Len())
}

func TestProgression_PositionalAccess(t *testing.T) {
	p := NewProgression("p", ids("a", "b", "c")...)

	id, err := p.At(1)
	require.NoError(t, err)
	assert.Equal(t, ident.ID("b"), id)

	_, err = p.At(3)
	assert.True(t, errors.Is(err, ErrItemNotFound))

	require.NoError(t, p.SetAt(0, "z"))
	assert.Equal(t, 0, p.Index("z"))
	assert.Equal(t, -1, p.Index("a"))
	assert.True(t, errors.Is(p.SetAt(0, ""), ErrInvalidKey))
}

func TestProgression_SliceIsIndependent(t *testing.T) {
	p := NewProgression("p", ids("a", "b", "c", "d")...)

	s, err := p.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, ids("b", "c"), s.IDs())
	assert.Equal(t, "p", s.Name())

	require.NoError(t, s.SetAt(0, "x"))
	assert.Equal(t, ids("a", "b", "c", "d"), p.IDs())

	_, err = p.Slice(3, 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = p.Slice(0, 5)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestProgression_ConcatAndExtend(t *testing.T) {
	left := NewProgression("l", ids("a", "b")...)
	right := NewProgression("r", ids("b", "c")...)

	sum := left.Concat(right)
	assert.Equal(t, ids("a", "b", "b", "c"), sum.IDs())
	assert.Equal(t, ids("a", "b"), left.IDs())

	left.Extend(right)
	assert.True(t, sum.Equal(left))
}

func TestProgression_ContainsIsConjunctive(t *testing.T) {
	p := NewProgression("", ids("a", "b")...)
	assert.True(t, p.Contains(entity.ByID("a")))
	assert.True(t, p.Contains(entity.ByID("a", "b")))
	assert.False(t, p.Contains(entity.ByID("a", "c")))
	assert.False(t, p.Contains(entity.ByID()))
}

func TestProgression_Pop(t *testing.T) {
	p := NewProgression("", ids("a", "b", "c")...)

	last, err := p.Pop(-1)
	require.NoError(t, err)
	assert.Equal(t, ident.ID("c"), last)

	first, err := p.PopLeft()
	require.NoError(t, err)
	assert.Equal(t, ident.ID("a"), first)

	_, err = p.Pop(5)
	assert.True(t, errors.Is(err, ErrItemNotFound))

	p.Clear()
	assert.True(t, p.IsEmpty())
	_, err = p.PopLeft()
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestProgression_ReverseAndIterate(t *testing.T) {
	p := NewProgression("", ids("a", "b", "c")...)
	assert.Equal(t, ids("c", "b", "a"), p.Reverse().IDs())

	var seen []ident.ID
	for id := range p.All() {
		seen = append(seen, id)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, ids("a", "b"), seen)
}

func TestProgression_JSON(t *testing.T) {
	p := NewProgression("pending", ids("a", "b")...)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"pending","order":["a","b"]}`, string(data))

	var back Progression
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, p.Equal(&back))

	empty, err := json.Marshal(NewProgression(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":[]}`, string(empty))

	err = json.Unmarshal([]byte(`{"order":["a",""]}`), &back)
	assert.True(t, errors.Is(err, ErrInvalidKey))
}

func TestProgression_String(t *testing.T) {
	p := NewProgression("n", ids("a")...)
	assert.Contains(t, p.String(), "size=1")
}
