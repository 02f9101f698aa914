package collection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
)

func TestFlow_GetSetRemove(t *testing.T) {
	f := NewFlow()

	require.NoError(t, f.Set("pending", NewProgression("ignored", ids("a", "b")...)))
	require.NoError(t, f.Set("done", nil))

	got, err := f.Get("pending")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Name())
	assert.Equal(t, ids("a", "b"), got.IDs())

	got.Clear()
	again, _ := f.Get("pending")
	assert.Equal(t, 2, again.Len(), "Get returns a copy")

	require.NoError(t, f.Set("pending", NewProgression("", ids("c")...)))
	assert.Equal(t, []string{"pending", "done"}, f.Names())

	require.NoError(t, f.Remove("pending"))
	assert.Equal(t, []string{"done"}, f.Names())

	_, err = f.Get("pending")
	assert.True(t, errors.Is(err, ErrItemNotFound))
	assert.True(t, errors.Is(f.Remove("pending"), ErrItemNotFound))
}

func TestFlow_DefaultName(t *testing.T) {
	f := NewFlow(func(o *FlowOptions) { o.DefaultName = "main" })
	assert.Equal(t, "main", f.DefaultName())

	require.NoError(t, f.Append("", entity.ByID("a")))
	assert.True(t, f.Has("main"))
	assert.True(t, f.Has(""))

	bare := NewFlow()
	assert.True(t, errors.Is(bare.Append("", entity.ByID("a")), ErrInvalidKey))
	_, err := bare.Get("")
	assert.True(t, errors.Is(err, ErrInvalidKey))
	assert.False(t, bare.Has(""))
}

func TestFlow_Register(t *testing.T) {
	f := NewFlow(func(o *FlowOptions) { o.DefaultName = "main" })

	require.NoError(t, f.Register(NewProgression("todo", ids("a")...)))
	require.NoError(t, f.Register(NewProgression("", ids("b")...)))

	err := f.Register(NewProgression("todo"))
	assert.True(t, errors.Is(err, ErrItemExists))
	assert.True(t, errors.Is(f.Register(nil), ErrInvalidKey))

	assert.Equal(t, []string{"todo", "main"}, f.Names())
}

func TestFlow_AppendExcludePop(t *testing.T) {
	f := NewFlow()

	require.NoError(t, f.Append("q", entity.ByID("a", "b")))
	require.NoError(t, f.Append("q", entity.ByID("b", "c")))
	require.NoError(t, f.Append("r", entity.ByID("c", "d")))
	assert.True(t, errors.Is(f.Append("q", entity.ByID()), ErrInvalidKey))

	q, _ := f.Get("q")
	assert.Equal(t, ids("a", "b", "c"), q.IDs())

	f.Exclude("q", entity.ByID("b"))
	f.Exclude("missing", entity.ByID("b"))
	f.ExcludeAll(entity.ByID("c"))

	assert.Equal(t, []string{"q", "r"}, f.Names())
	assert.Equal(t, []int{1, 1}, f.Shape())
	assert.Equal(t, 2, f.Size())

	id, err := f.PopLeft("q")
	require.NoError(t, err)
	assert.Equal(t, ident.ID("a"), id)

	_, err = f.PopLeft("q")
	assert.True(t, errors.Is(err, ErrItemNotFound))
	_, err = f.PopLeft("missing")
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

func TestFlow_UniqueAndAllOrders(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Set("x", NewProgression("", ids("a", "b", "a")...)))
	require.NoError(t, f.Set("y", NewProgression("", ids("c", "b")...)))

	assert.Equal(t, ids("a", "b", "c"), f.Unique())
	assert.Equal(t, 5, f.Size())

	orders := f.AllOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, "x", orders[0].Name())
	assert.Equal(t, "y", orders[1].Name())

	f.Clear()
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Unique())
}

func TestFlow_Concurrent(t *testing.T) {
	f := NewFlow()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ident.ID(string(rune('a' + i)))
			assert.NoError(t, f.Append("shared", entity.ByID(id)))
			_ = f.Names()
			_ = f.Unique()
		}(i)
	}
	wg.Wait()

	p, err := f.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, 20, p.Len())
}
