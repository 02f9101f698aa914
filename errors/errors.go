// Package errors provides error handling for meshcore.
//
// It re-exports github.com/cockroachdb/errors so every package creates,
// wraps and inspects errors the same way:
//
//	// Sentinel declared once per package
//	var ErrItemNotFound = errors.New("item not found")
//
//	// Call sites wrap the sentinel with context
//	return errors.Wrapf(ErrItemNotFound, "key %s", id)
//
//	// Callers check with Is / As
//	if errors.Is(err, collection.ErrItemNotFound) { ... }
//
// Wrapped sentinels keep their identity across Wrap/Wrapf/WithHint, which is
// what the collection and mail packages rely on for their error taxonomy.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing hints and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// WrapSentinel attaches a formatted message to a sentinel while keeping it
// matchable with Is.
func WrapSentinel(sentinel error, format string, args ...any) error {
	return Wrapf(sentinel, format, args...)
}
