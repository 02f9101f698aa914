package mail

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/meshcore/collection"
	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
	"github.com/hupe1980/meshcore/logging"
)

// Source is any component that owns a Mailbox.
type Source interface {
	Mailbox() *Mailbox
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Logger logging.Logger
	// RefreshInterval is the pause between rounds in Run. Defaults to one
	// second.
	RefreshInterval time.Duration
}

// routeLogger is implemented by loggers that record route steps in detail.
type routeLogger interface {
	LogRoute(op, mailbox string, packages int, dur time.Duration, err error)
}

// roundTimer is implemented by loggers that time a whole Run round.
type roundTimer interface {
	StartTimer(op string) func()
}

// staging holds collected packages for one recipient, grouped by sender in
// first-collected order.
type staging struct {
	senders []ident.ID
	queues  map[ident.ID][]*Package
}

// Manager routes packages between registered mailboxes. It is the only
// component expected to drain outbound queues and feed inbound ones.
type Manager struct {
	sources  *collection.Pile[*Mailbox]
	logger   logging.Logger
	interval time.Duration

	// route serializes collect and deliver steps so per-pair FIFO order
	// survives concurrent callers.
	route sync.Mutex

	mu      sync.Mutex
	staging map[ident.ID]*staging
}

// NewManager creates a Manager without sources.
func NewManager(optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Logger:          logging.NoOpLogger{},
		RefreshInterval: time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Second
	}

	sources, err := collection.NewPile[*Mailbox](nil, func(o *collection.PileOptions) {
		o.Kinds = []*entity.Kind{MailboxKind}
	})
	if err != nil {
		// An empty pile cannot fail validation.
		panic(err)
	}

	return &Manager{
		sources:  sources,
		logger:   opts.Logger,
		interval: opts.RefreshInterval,
		staging:  make(map[ident.ID]*staging),
	}
}

// AddSources registers mailboxes. Already registered mailboxes are kept.
func (m *Manager) AddSources(sources ...Source) error {
	boxes := make([]*Mailbox, 0, len(sources))
	for _, s := range sources {
		if s == nil || s.Mailbox() == nil {
			return errors.WrapSentinel(ErrUnknownSource, "nil source")
		}
		boxes = append(boxes, s.Mailbox())
	}

	if err := m.sources.Include(boxes...); err != nil {
		return errors.Wrap(err, "add sources")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range boxes {
		if _, ok := m.staging[b.ID()]; !ok {
			m.staging[b.ID()] = &staging{queues: make(map[ident.ID][]*Package)}
		}
	}

	return nil
}

// DeleteSource unregisters a mailbox and drops packages staged for it.
func (m *Manager) DeleteSource(id ident.ID) error {
	if _, err := m.sources.Pop(entity.ByID(id)); err != nil {
		return errors.WrapSentinel(ErrUnknownSource, "source %s", id)
	}

	m.mu.Lock()
	dropped := 0
	if st, ok := m.staging[id]; ok {
		for _, q := range st.queues {
			dropped += len(q)
		}
	}
	delete(m.staging, id)
	m.mu.Unlock()

	if dropped > 0 {
		m.logger.Warn("source removed with staged packages", "source", id.Short(), "dropped", dropped)
	}

	return nil
}

// Sources returns the registered mailbox identifiers in registration order.
func (m *Manager) Sources() []ident.ID { return m.sources.Keys() }

func (m *Manager) mailbox(id ident.ID) (*Mailbox, error) {
	mb, err := m.sources.Get(entity.ByID(id))
	if err != nil {
		return nil, errors.WrapSentinel(ErrUnknownSource, "source %s", id)
	}
	return mb, nil
}

// Collect drains every outbound queue of sender into the router. Queues for
// unregistered recipients stay in the sender's mailbox and are reported with
// ErrUnknownSource after the other queues have been collected.
func (m *Manager) Collect(sender ident.ID) error {
	m.route.Lock()
	defer m.route.Unlock()

	start := time.Now()

	mb, err := m.mailbox(sender)
	if err != nil {
		return err
	}

	var (
		firstErr error
		moved    int
	)

	for _, rcpt := range mb.Recipients() {
		if !m.sources.Contains(entity.ByID(rcpt)) {
			if firstErr == nil {
				firstErr = errors.WrapSentinel(ErrUnknownSource, "recipient %s of sender %s", rcpt, sender)
			}
			continue
		}

		pkgs := mb.DrainOutbound(rcpt)
		if len(pkgs) == 0 {
			continue
		}

		m.mu.Lock()
		st, ok := m.staging[rcpt]
		if ok {
			if _, seen := st.queues[sender]; !seen {
				st.senders = append(st.senders, sender)
			}
			st.queues[sender] = append(st.queues[sender], pkgs...)
		}
		m.mu.Unlock()

		if !ok {
			// The recipient was removed after the check above.
			if err := mb.requeue(rcpt, pkgs); err != nil {
				m.logger.Error("requeue failed", "sender", sender.Short(), "recipient", rcpt.Short(), "packages", len(pkgs), "error", err)
			} else {
				m.logger.Warn("recipient removed during collect", "sender", sender.Short(), "recipient", rcpt.Short(), "requeued", len(pkgs))
			}
			if firstErr == nil {
				firstErr = errors.WrapSentinel(ErrUnknownSource, "recipient %s of sender %s", rcpt, sender)
			}
			continue
		}

		moved += len(pkgs)
	}

	m.logRoute("collect", sender, moved, time.Since(start), firstErr)

	return firstErr
}

// Deliver hands every package staged for recipient to its mailbox, sender by
// sender in collection order.
func (m *Manager) Deliver(recipient ident.ID) error {
	m.route.Lock()
	defer m.route.Unlock()

	start := time.Now()

	mb, err := m.mailbox(recipient)
	if err != nil {
		return err
	}

	m.mu.Lock()
	st, ok := m.staging[recipient]
	if ok {
		m.staging[recipient] = &staging{queues: make(map[ident.ID][]*Package)}
	}
	m.mu.Unlock()

	if st == nil {
		return nil
	}

	var (
		firstErr error
		moved    int
	)

	for _, sender := range st.senders {
		for _, p := range st.queues[sender] {
			if err := mb.Receive(p); err != nil {
				m.logger.Error("package delivery failed", "package", p.ID().Short(), "recipient", recipient.Short(), "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			moved++
		}
	}

	m.logRoute("deliver", recipient, moved, time.Since(start), firstErr)

	return firstErr
}

// CollectAll collects from every source. Failures do not stop the round; the
// first one is returned.
func (m *Manager) CollectAll() error {
	var firstErr error
	for _, id := range m.sources.Keys() {
		if err := m.Collect(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DeliverAll delivers to every source. Failures do not stop the round; the
// first one is returned.
func (m *Manager) DeliverAll() error {
	var firstErr error
	for _, id := range m.sources.Keys() {
		if err := m.Deliver(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Staged returns how many collected packages wait for delivery.
func (m *Manager) Staged() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, st := range m.staging {
		for _, q := range st.queues {
			n += len(q)
		}
	}

	return n
}

// Run collects and delivers in rounds until ctx is done. Round failures are
// logged, not returned. Run returns ctx.Err().
func (m *Manager) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("router started", "sources", m.sources.Len(), "interval", m.interval)

	for {
		stop := func() {}
		if rt, ok := m.logger.(roundTimer); ok {
			stop = rt.StartTimer("route round")
		}

		if err := m.CollectAll(); err != nil {
			m.logger.Warn("collect round incomplete", "error", err)
		}

		if err := m.DeliverAll(); err != nil {
			m.logger.Warn("deliver round incomplete", "error", err)
		}

		stop()

		select {
		case <-ctx.Done():
			m.logger.Info("router stopped", "staged", m.Staged())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Manager) logRoute(op string, id ident.ID, n int, dur time.Duration, err error) {
	if rl, ok := m.logger.(routeLogger); ok {
		rl.LogRoute(op, id.Short(), n, dur, err)
		return
	}

	if err != nil {
		m.logger.Warn("route step failed", "operation", op, "source", id.Short(), "packages", n, "error", err)
		return
	}

	if n > 0 {
		m.logger.Debug("route step completed", "operation", op, "source", id.Short(), "packages", n, "duration", dur)
	}
}
