// Package collection provides the ordered, uniquely-keyed containers used
// throughout meshcore:
//
//   - Progression: an ordered sequence of identifiers (duplicates allowed)
//   - Pile: an identifier-indexed, optionally kind-constrained container that
//     keeps a Progression and a map in lockstep and supports set algebra
//   - Flow: a named collection of Progressions
//
// Pile and Flow are safe for concurrent use. Every mutating Pile call is a
// single critical section: callers observe the order/map invariant holding
// before and after each call, and failed calls leave the Pile untouched.
// Progression on its own is a plain value type and is not synchronized.
package collection
