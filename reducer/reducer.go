package reducer

import "reflect"

// MaxCacheSize is the number of action results a wrapped reducer remembers.
const MaxCacheSize = 2

// Reducer is the base state transition.
// It should return the input state unchanged for actions it does not handle.
type Reducer[S, A any] func(state S, action *A) S

// BeforeEffect transforms the state before the base reducer sees it.
type BeforeEffect[S, A any] func(state S, action *A) S

// AfterEffect transforms the state produced by the base reducer.
//
// previous is the state the base reducer received, i.e. the output of the
// before-chain. Returning ok == false keeps the accumulated state as is.
type AfterEffect[S, A any] func(state S, action *A, previous S) (next S, ok bool)

// Always adapts an after-effect that always replaces the state.
func Always[S, A any](fn func(state S, action *A, previous S) S) AfterEffect[S, A] {
	return func(state S, action *A, previous S) (S, bool) {
		return fn(state, action, previous), true
	}
}

// WithEffects returns reduce wrapped with the given before and after effects.
//
// Each call of WithEffects owns its own memo, so two wrapped reducers never
// share cached results even when they see the same action pointer.
// The returned reducer is not safe for concurrent use.
func WithEffects[S, A any](
	reduce Reducer[S, A],
	before []BeforeEffect[S, A],
	after []AfterEffect[S, A],
) Reducer[S, A] {
	if reduce == nil {
		panic("reducer: nil base reducer")
	}
	memo := newMemo[A, S](MaxCacheSize)
	// pointers to distinct zero-size values may be equal, so they carry no identity
	memoizable := reflect.TypeFor[A]().Size() != 0

	return func(state S, action *A) S {
		if memoizable {
			if cached, ok := memo.load(action); ok {
				return cached
			}
		}

		beforeState := state
		for _, fn := range before {
			beforeState = fn(beforeState, action)
		}

		finalState := reduce(beforeState, action)
		for _, fn := range after {
			if next, ok := fn(finalState, action, beforeState); ok {
				finalState = next
			}
		}

		if memoizable {
			memo.store(action, finalState)
		}
		return finalState
	}
}
