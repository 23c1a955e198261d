// Package reducer composes a base reducer with ordered before and after effects.
//
// A reducer is the canonical state transition of an application:
//
//	func(state S, action *A) S
//
// WithEffects wraps it so that every transition runs
//
//	before[0] → before[1] → … → reduce → after[0] → after[1] → …
//
// and memoizes the final state by action identity. Hosts that re-invoke a
// reducer for the same action instance (strict mode, which calls it twice to
// surface impure reducers) get the first result back without any effect
// running a second time.
//
// Actions are always passed by pointer. The pointer is the memo key:
//
//	a := &Action{Type: "set-value", Payload: "next"}
//	wrapped(s, a) // runs effects
//	wrapped(s, a) // cached
//	wrapped(s, &Action{Type: "set-value", Payload: "next"}) // runs effects again
//
// The memo holds at most MaxCacheSize entries and is cleared wholesale when a
// new entry would exceed it. That is enough to absorb one immediate replay; it
// is not an LRU and a replay arriving after two newer actions is recomputed.
//
// Deduplication relies on the host passing the very same pointer to each
// duplicate invocation. A host that copies actions between invocations silently
// runs effects again.
//
// Actions of a zero-size type, such as struct{}, are never memoized: Go may
// hand out the same address for distinct zero-size values, so their pointers
// do not identify an instance. Every invocation with such an action runs the
// effects, including strict mode replays. Give the action a field when
// replays must be deduplicated.
package reducer
