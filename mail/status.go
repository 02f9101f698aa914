package mail

import (
	"slices"
	"sync/atomic"

	"github.com/hupe1980/meshcore/errors"
)

// Status is the delivery state of a package.
type Status int32

// Delivery states, in the only order a package may pass through them.
const (
	StatusCreated Status = iota
	StatusOutbound
	StatusInTransit
	StatusInbound
	StatusDelivered
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusOutbound:
		return "outbound"
	case StatusInTransit:
		return "in_transit"
	case StatusInbound:
		return "inbound"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == StatusDelivered }

type statusCell struct {
	v atomic.Int32
}

func (c *statusCell) load() Status { return Status(c.v.Load()) }

// advance moves the cell to next if it currently holds one of from.
func (c *statusCell) advance(next Status, from ...Status) error {
	for {
		cur := c.load()
		if !slices.Contains(from, cur) {
			return errors.WrapSentinel(ErrInvalidTransition, "%s -> %s", cur, next)
		}
		if c.v.CompareAndSwap(int32(cur), int32(next)) {
			return nil
		}
	}
}

// reset forces the cell back to prev after a failed enqueue.
func (c *statusCell) reset(prev Status) { c.v.Store(int32(prev)) }
