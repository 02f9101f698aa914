package mail

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
	"github.com/hupe1980/meshcore/internal/testutil"
)

// component owns a mailbox the way higher level actors do.
type component struct {
	box *Mailbox
}

func (c *component) Mailbox() *Mailbox { return c.box }

func newRouter(t *testing.T, owners ...ident.ID) (*Manager, map[ident.ID]*Mailbox) {
	t.Helper()

	m := NewManager()
	boxes := make(map[ident.ID]*Mailbox, len(owners))
	for _, o := range owners {
		boxes[o] = NewMailbox(o)
		require.NoError(t, m.AddSources(&component{box: boxes[o]}))
	}

	return m, boxes
}

func payloads(pkgs []*Package) []any {
	out := make([]any, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Payload()
	}
	return out
}

func TestManager_RoutesFIFOPerPair(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")
	m, boxes := newRouter(t, "a", "b", "c")

	require.NoError(t, boxes["a"].Send(NewPackage(gen, "a", "c", CategoryMessage, "a1")))
	require.NoError(t, boxes["b"].Send(NewPackage(gen, "b", "c", CategoryMessage, "b1")))
	require.NoError(t, boxes["a"].Send(NewPackage(gen, "a", "c", CategoryMessage, "a2")))
	require.NoError(t, boxes["a"].Send(NewPackage(gen, "a", "b", CategoryMessage, "ab")))

	require.NoError(t, m.CollectAll())
	assert.Equal(t, 4, m.Staged())
	assert.Equal(t, 0, boxes["a"].Len())

	require.NoError(t, m.DeliverAll())
	assert.Equal(t, 0, m.Staged())

	got := boxes["c"].DrainInbound()
	assert.Equal(t, []any{"a1", "a2", "b1"}, payloads(got))
	for _, p := range got {
		assert.Equal(t, StatusDelivered, p.Status())
	}
	assert.Equal(t, []any{"ab"}, payloads(boxes["b"].DrainInbound()))
}

func TestManager_UnknownSources(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")
	m, boxes := newRouter(t, "a", "b")

	assert.True(t, errors.Is(m.Collect("zzz"), ErrUnknownSource))
	assert.True(t, errors.Is(m.Deliver("zzz"), ErrUnknownSource))
	assert.True(t, errors.Is(m.DeleteSource("zzz"), ErrUnknownSource))
	assert.True(t, errors.Is(m.AddSources(Source(nil)), ErrUnknownSource))

	require.NoError(t, boxes["a"].Send(NewPackage(gen, "a", "ghost", CategoryMessage, "lost?")))
	require.NoError(t, boxes["a"].Send(NewPackage(gen, "a", "b", CategoryMessage, "ok")))

	err := m.Collect("a")
	assert.True(t, errors.Is(err, ErrUnknownSource))
	assert.Equal(t, 1, boxes["a"].PendingOutbound("ghost"), "undeliverable queue stays with the sender")

	require.NoError(t, m.Deliver("b"))
	assert.Equal(t, 1, boxes["b"].PendingInbound())

	ghost := NewMailbox("ghost")
	require.NoError(t, m.AddSources(ghost))
	require.NoError(t, m.CollectAll())
	require.NoError(t, m.DeliverAll())
	assert.Equal(t, []any{"lost?"}, payloads(ghost.DrainInbound()))
}

func TestManager_AddSourcesIsIdempotent(t *testing.T) {
	m, boxes := newRouter(t, "a")
	require.NoError(t, m.AddSources(boxes["a"], NewMailbox("b")))
	assert.Equal(t, []ident.ID{"a", "b"}, m.Sources())
}

func TestManager_DeleteSourceDropsStaged(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")

	lg := new(testutil.MockLogger)
	lg.On("Debug", mock.Anything, mock.Anything).Maybe()
	lg.On("Warn", "source removed with staged packages", mock.Anything).Once()

	m := NewManager(func(o *ManagerOptions) { o.Logger = lg })
	a, b := NewMailbox("a"), NewMailbox("b")
	require.NoError(t, m.AddSources(a, b))

	require.NoError(t, a.Send(NewPackage(gen, "a", "b", CategoryMessage, nil)))
	require.NoError(t, m.Collect("a"))
	require.NoError(t, m.DeleteSource("b"))

	assert.Equal(t, []ident.ID{"a"}, m.Sources())
	assert.Equal(t, 0, m.Staged())
	lg.AssertExpectations(t)
}

func TestManager_RecipientRemovedDuringCollect(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")

	var m *Manager

	// Remove the recipient while its queue is being drained.
	boxLog := new(testutil.MockLogger)
	boxLog.On("Debug", "outbound drained", mock.Anything).Once().Run(func(mock.Arguments) {
		require.NoError(t, m.DeleteSource("b"))
	})
	boxLog.On("Debug", mock.Anything, mock.Anything).Maybe()

	routerLog := new(testutil.MockLogger)
	routerLog.On("Warn", "recipient removed during collect", mock.Anything).Once()
	routerLog.On("Warn", "route step failed", mock.Anything).Once()
	routerLog.On("Debug", mock.Anything, mock.Anything).Maybe()

	m = NewManager(func(o *ManagerOptions) { o.Logger = routerLog })
	a := NewMailbox("a", func(o *MailboxOptions) { o.Logger = boxLog })
	b := NewMailbox("b")
	require.NoError(t, m.AddSources(a, b))

	p := NewPackage(gen, "a", "b", CategoryMessage, "late")
	require.NoError(t, a.Send(p))

	err := m.Collect("a")
	assert.True(t, errors.Is(err, ErrUnknownSource))

	assert.Equal(t, []ident.ID{"a"}, m.Sources())
	assert.Equal(t, 0, m.Staged())
	assert.Equal(t, 1, a.PendingOutbound("b"))
	assert.Equal(t, StatusOutbound, p.Status())

	// The stranded package is routed once the recipient is back.
	require.NoError(t, m.AddSources(b))
	require.NoError(t, m.Collect("a"))
	require.NoError(t, m.Deliver("b"))
	assert.Equal(t, []any{"late"}, payloads(b.DrainInbound()))

	boxLog.AssertExpectations(t)
	routerLog.AssertExpectations(t)
}

func TestManager_RunUntilCancelled(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")

	m := NewManager(func(o *ManagerOptions) { o.RefreshInterval = 5 * time.Millisecond })
	a, b := NewMailbox("a"), NewMailbox("b")
	require.NoError(t, m.AddSources(a, b))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Send(NewPackage(gen, "a", "b", CategoryMessage, i)))
	}

	var got []*Package
	require.Eventually(t, func() bool {
		got = append(got, b.DrainInbound()...)
		return len(got) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []any{0, 1, 2}, payloads(got))

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("router did not stop")
	}
}

// timedLogger counts completed Run rounds.
type timedLogger struct {
	testutil.MockLogger
	rounds atomic.Int32
}

func (l *timedLogger) StartTimer(string) func() {
	return func() { l.rounds.Add(1) }
}

func TestManager_RunTimesRounds(t *testing.T) {
	lg := new(timedLogger)
	lg.On("Info", mock.Anything, mock.Anything).Maybe()
	lg.On("Debug", mock.Anything, mock.Anything).Maybe()

	m := NewManager(func(o *ManagerOptions) {
		o.Logger = lg
		o.RefreshInterval = time.Millisecond
	})
	require.NoError(t, m.AddSources(NewMailbox("a")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return lg.rounds.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	assert.True(t, errors.Is(<-done, context.Canceled))
}

func TestManager_RouteFailureIsLogged(t *testing.T) {
	gen := testutil.NewSeqGenerator("p")

	lg := new(testutil.MockLogger)
	lg.On("Warn", "route step failed", mock.Anything).Once()

	m := NewManager(func(o *ManagerOptions) { o.Logger = lg })
	a := NewMailbox("a")
	require.NoError(t, m.AddSources(a))
	require.NoError(t, a.Send(NewPackage(gen, "a", "ghost", CategoryMessage, nil)))

	assert.Error(t, m.Collect("a"))
	lg.AssertExpectations(t)
}
