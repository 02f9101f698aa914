package mail

import (
	"slices"
	"sync"

	"github.com/hupe1980/meshcore/collection"
	"github.com/hupe1980/meshcore/entity"
	"github.com/hupe1980/meshcore/errors"
	"github.com/hupe1980/meshcore/ident"
	"github.com/hupe1980/meshcore/logging"
)

// MailboxKind tags every Mailbox.
var MailboxKind = entity.NewKind("Mailbox", entity.ElementKind)

// MailboxOptions configures a Mailbox.
type MailboxOptions struct {
	Logger logging.Logger
}

// Mailbox holds one inbound queue and one outbound queue per recipient. Each
// queue is its own Pile, so draining one recipient never blocks sends to
// another. A Mailbox carries its owner's identifier and can itself be stored
// in a Pile.
type Mailbox struct {
	owner  ident.ID
	logger logging.Logger

	mu         sync.RWMutex
	outbound   map[ident.ID]*collection.Pile[*Package]
	recipients []ident.ID

	inbound *collection.Pile[*Package]
}

// NewMailbox creates an empty mailbox owned by owner.
func NewMailbox(owner ident.ID, optFns ...func(o *MailboxOptions)) *Mailbox {
	opts := MailboxOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Mailbox{
		owner:    owner,
		logger:   opts.Logger,
		outbound: make(map[ident.ID]*collection.Pile[*Package]),
		inbound:  newQueue(),
	}
}

func newQueue() *collection.Pile[*Package] {
	q, err := collection.NewPile[*Package](nil, func(o *collection.PileOptions) {
		o.Kinds = []*entity.Kind{PackageKind}
	})
	if err != nil {
		// An empty pile cannot fail validation.
		panic(err)
	}
	return q
}

// ID returns the owner's identifier.
func (m *Mailbox) ID() ident.ID { return m.owner }

// Kind implements entity.Entity.
func (m *Mailbox) Kind() *entity.Kind { return MailboxKind }

// Mailbox returns m, so a bare Mailbox is a Source.
func (m *Mailbox) Mailbox() *Mailbox { return m }

// queue returns the outbound pile for recipient, creating it when create is
// set.
func (m *Mailbox) queue(recipient ident.ID, create bool) *collection.Pile[*Package] {
	m.mu.RLock()
	q, ok := m.outbound[recipient]
	m.mu.RUnlock()

	if ok || !create {
		return q
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if q, ok = m.outbound[recipient]; ok {
		return q
	}

	q = newQueue()
	m.outbound[recipient] = q
	m.recipients = append(m.recipients, recipient)

	return q
}

// Send validates p and queues it for its recipient. Later sends to the same
// recipient are drained after earlier ones. Send never blocks on consumers.
func (m *Mailbox) Send(p *Package) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Sender() != m.owner {
		return errors.WrapSentinel(ErrInvalidPackage, "package sender %s is not mailbox owner %s", p.Sender().Short(), m.owner.Short())
	}

	if err := p.status.advance(StatusOutbound, StatusCreated); err != nil {
		return err
	}

	if err := m.queue(p.Recipient(), true).Append(p); err != nil {
		p.status.reset(StatusCreated)
		return err
	}

	m.logger.Debug("package queued", "mailbox", m.owner.Short(), "package", p.ID().Short(), "recipient", p.Recipient().Short(), "category", p.Category())

	return nil
}

// DrainOutbound atomically removes every package queued for recipient, in
// FIFO order, and marks them in transit. It returns nil when nothing is
// queued.
func (m *Mailbox) DrainOutbound(recipient ident.ID) []*Package {
	q := m.queue(recipient, false)
	if q == nil {
		return nil
	}

	out := q.Drain()
	for _, p := range out {
		// Only this drain could have taken p out of the queue.
		_ = p.status.advance(StatusInTransit, StatusOutbound)
	}

	if len(out) > 0 {
		m.logger.Debug("outbound drained", "mailbox", m.owner.Short(), "recipient", recipient.Short(), "packages", len(out))
	}

	return out
}

// requeue puts packages drained for recipient back at the front of its
// outbound queue, ahead of anything sent since the drain.
func (m *Mailbox) requeue(recipient ident.ID, pkgs []*Package) error {
	for _, p := range pkgs {
		p.status.reset(StatusOutbound)
	}

	return m.queue(recipient, true).Insert(0, pkgs...)
}

// Receive queues p in the inbound pile. p must be addressed to this mailbox
// and be either freshly created or in transit.
func (m *Mailbox) Receive(p *Package) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.Recipient() != m.owner {
		return errors.WrapSentinel(ErrInvalidPackage, "package recipient %s is not mailbox owner %s", p.Recipient().Short(), m.owner.Short())
	}

	prev := p.Status()
	if err := p.status.advance(StatusInbound, StatusCreated, StatusInTransit); err != nil {
		return err
	}

	if err := m.inbound.Append(p); err != nil {
		p.status.reset(prev)
		return err
	}

	m.logger.Debug("package received", "mailbox", m.owner.Short(), "package", p.ID().Short(), "sender", p.Sender().Short())

	return nil
}

// DrainInbound atomically removes every pending inbound package in arrival
// order and marks them delivered.
func (m *Mailbox) DrainInbound() []*Package {
	out := m.inbound.Drain()
	for _, p := range out {
		_ = p.status.advance(StatusDelivered, StatusInbound)
	}
	return out
}

// Recipients returns recipients with queued packages, in the order they were
// first addressed.
func (m *Mailbox) Recipients() []ident.ID {
	m.mu.RLock()
	rs := slices.Clone(m.recipients)
	m.mu.RUnlock()

	return slices.DeleteFunc(rs, func(r ident.ID) bool {
		return m.queue(r, false).IsEmpty()
	})
}

// Senders returns the distinct senders of pending inbound packages, in
// arrival order.
func (m *Mailbox) Senders() []ident.ID {
	seen := make(map[ident.ID]struct{})

	var out []ident.ID
	for _, p := range m.inbound.Values() {
		if _, ok := seen[p.Sender()]; ok {
			continue
		}
		seen[p.Sender()] = struct{}{}
		out = append(out, p.Sender())
	}

	return out
}

// PendingOutbound returns how many packages are queued for recipient.
func (m *Mailbox) PendingOutbound(recipient ident.ID) int {
	q := m.queue(recipient, false)
	if q == nil {
		return 0
	}
	return q.Len()
}

// PendingInbound returns how many packages wait to be drained.
func (m *Mailbox) PendingInbound() int { return m.inbound.Len() }

// Len returns the total number of queued packages in both directions.
func (m *Mailbox) Len() int {
	m.mu.RLock()
	qs := make([]*collection.Pile[*Package], 0, len(m.outbound))
	for _, q := range m.outbound {
		qs = append(qs, q)
	}
	m.mu.RUnlock()

	n := m.inbound.Len()
	for _, q := range qs {
		n += q.Len()
	}

	return n
}
