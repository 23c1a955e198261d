package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/on-the-ground/effect_ive_reducer/effects"
	"github.com/on-the-ground/effect_ive_reducer/effects/concurrency"
	"github.com/on-the-ground/effect_ive_reducer/effects/log"
	"github.com/on-the-ground/effect_ive_reducer/effects/scheduler"
	"github.com/on-the-ground/effect_ive_reducer/reducer"
)

// ErrClosedStore is returned by Dispatch after Close.
var ErrClosedStore = errors.New("store is closed")

// Dispatch sends an action to a store and waits until its update pass ran.
type Dispatch[A any] func(ctx context.Context, action *A) error

// Commit describes one committed state transition.
// Commits are published concurrently; order them by Seq.
type Commit[S, A any] struct {
	Seq    uint64
	Action *A
	Prev   S
	Next   S
	effects.TimeSpan
}

type Store[S, A any] struct {
	id     string
	reduce reducer.Reducer[S, A]
	strict bool
	equal  func(prev, next S) bool

	mu          sync.RWMutex
	state       S
	seq         uint64
	subscribers []subscription[S]

	sinkMu sync.RWMutex
	sink   chan Commit[S, A]
	closed bool
}

type subscription[S any] struct {
	id string
	fn func(S)
}

// New creates a store holding initial.
//
// ctx supplies the bindings unset options are read from. Dispatching needs a
// scheduler registered in the context passed to Dispatch. Updates are logged
// when the scheduler was registered on a context holding a log handler.
func New[S, A any](
	ctx context.Context,
	reduce reducer.Reducer[S, A],
	initial S,
	opts ...Option[S],
) *Store[S, A] {
	if reduce == nil {
		panic("store: nil reducer")
	}
	o := &options[S]{}
	for _, opt := range opts {
		opt(o)
	}
	o.resolve(ctx)

	return &Store[S, A]{
		id:     uuid.NewString(),
		reduce: reduce,
		strict: *o.strict,
		equal:  o.equal,
		state:  initial,
		sink:   make(chan Commit[S, A], *o.sourceBufferSize),
	}
}

// UseReducer creates a store and returns it with its dispatch function.
func UseReducer[S, A any](
	ctx context.Context,
	reduce reducer.Reducer[S, A],
	initial S,
	opts ...Option[S],
) (*Store[S, A], Dispatch[A]) {
	s := New(ctx, reduce, initial, opts...)
	return s, s.Dispatch
}

// UseReducerWithEffects is UseReducer with reduce wrapped by reducer.WithEffects.
// The store owns the wrapped reducer, and with it the memo.
func UseReducerWithEffects[S, A any](
	ctx context.Context,
	reduce reducer.Reducer[S, A],
	initial S,
	before []reducer.BeforeEffect[S, A],
	after []reducer.AfterEffect[S, A],
	opts ...Option[S],
) (*Store[S, A], Dispatch[A]) {
	return UseReducer(ctx, reducer.WithEffects(reduce, before, after), initial, opts...)
}

// ID identifies the store. It is the key its updates are scheduled by.
func (s *Store[S, A]) ID() string {
	return s.id
}

// State returns the last committed state.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch runs action through the reducer on the scheduler registered in ctx
// and waits for the update pass. A panic in the reducer is returned as an
// error wrapping scheduler.ErrUpdatePanicked and nothing is committed.
func (s *Store[S, A]) Dispatch(ctx context.Context, action *A) error {
	if s.isClosed() {
		return ErrClosedStore
	}
	return scheduler.Effect(ctx, scheduler.Update{
		Key: s.id,
		Apply: func(ctx context.Context) error {
			s.update(ctx, action)
			return nil
		},
	})
}

// Subscribe registers fn to be called with every committed state.
func (s *Store[S, A]) Subscribe(fn func(S)) (unsubscribe func()) {
	id := uuid.NewString()

	s.mu.Lock()
	s.subscribers = append(s.subscribers, subscription[S]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscription[S]) bool {
			return sub.id == id
		})
	}
}

// Source returns the channel commits are published on.
// Commits are dropped while it is full. It is closed by Close.
func (s *Store[S, A]) Source() <-chan Commit[S, A] {
	return s.sink
}

// Close rejects further dispatches and closes Source. It is idempotent.
func (s *Store[S, A]) Close() {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.sink)
}

func (s *Store[S, A]) isClosed() bool {
	s.sinkMu.RLock()
	defer s.sinkMu.RUnlock()
	return s.closed
}

// update is one update pass. It only ever runs on the scheduler worker owning s.id.
func (s *Store[S, A]) update(ctx context.Context, action *A) {
	start := time.Now()
	prev := s.State()

	next := s.reduce(prev, action)
	if s.strict {
		next = s.reduce(prev, action)
	}

	if s.equal(prev, next) {
		logEffect(ctx, log.LogDebug, "state unchanged, commit skipped", map[string]interface{}{
			"store": s.id,
		})
		return
	}

	s.mu.Lock()
	s.state = next
	s.seq++
	seq := s.seq
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		sub.fn(next)
	}

	commit := Commit[S, A]{
		Seq:      seq,
		Action:   action,
		Prev:     prev,
		Next:     next,
		TimeSpan: effects.Since(start),
	}
	concurrency.Effect(ctx, func(context.Context) {
		s.publish(commit)
	})

	logEffect(ctx, log.LogDebug, "state committed", map[string]interface{}{
		"store": s.id,
		"seq":   seq,
	})
}

func (s *Store[S, A]) publish(commit Commit[S, A]) {
	s.sinkMu.RLock()
	defer s.sinkMu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.sink <- commit:
	default:
	}
}
