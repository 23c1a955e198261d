package concurrency

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_reducer/effects"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
	"github.com/on-the-ground/effect_ive_reducer/effects/log"
)

// WithEffectHandler installs a fire-and-forget concurrency effect handler.
//
// It allows `Effect(ctx, fns...)` to spawn goroutines under a managed scope.
//
//   - Cancelling the parent context cancels every child context.
//   - The returned teardown closes the handler and waits for every child to return.
//   - Children log panics through the log effect; a log handler must be registered
//     in ctx before this one.
func WithEffectHandler(
	ctx context.Context,
	bufferSize int,
) (context.Context, func() context.Context) {
	sv := &supervisor{
		doneCh: make(chan struct{}),
	}
	sv.watchParentCancel(ctx)

	return effects.WithFireAndForgetEffectHandler(
		ctx,
		bufferSize,
		effectmodel.EffectConcurrency,
		sv.spawnConcurrentChildren,
		func() {
			sv.waitChildren(ctx)
			close(sv.doneCh)
		},
	)
}

// Effect runs each function in its own goroutine owned by the concurrency handler in ctx.
// Panics if no concurrency handler is registered.
func Effect(ctx context.Context, fns ...func(context.Context)) {
	effects.FireAndForgetEffect[Payload](ctx, effectmodel.EffectConcurrency, fns)
}

type Payload []func(context.Context)

// supervisor tracks the children spawned by one concurrency handler.
type supervisor struct {
	wg              sync.WaitGroup
	mu              sync.Mutex
	childrenCancels []context.CancelFunc
	doneCh          chan struct{}
}

// watchParentCancel cancels every child once the parent context is done.
func (s *supervisor) watchParentCancel(parentContext context.Context) {
	ready := make(chan struct{})
	go func() {
		close(ready)
		select {
		case <-parentContext.Done():
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, cancelFn := range s.childrenCancels {
				cancelFn()
			}
		case <-s.doneCh:
		}
	}()
	<-ready
}

// spawnConcurrentChildren starts each function in its own goroutine with its own context.
// Panics in a child are recovered and logged.
func (s *supervisor) spawnConcurrentChildren(
	parentContext context.Context,
	functions Payload,
) {
	ready := sync.WaitGroup{}

	for _, fn := range functions {
		childCtx, cancel := context.WithCancel(context.Background())
		s.mu.Lock()
		s.childrenCancels = append(s.childrenCancels, cancel)
		s.mu.Unlock()

		s.wg.Add(1)
		ready.Add(1)
		go func(f func(context.Context), ctx context.Context) {
			defer s.wg.Done()
			defer cancel()
			defer func() {
				if r := recover(); r != nil {
					log.Effect(parentContext, log.LogError, "panic in child routine", map[string]interface{}{
						"error": r,
					})
				}
			}()
			ready.Done()
			f(ctx)
		}(fn, childCtx)
	}

	// Wait until all child goroutines have been started before returning
	ready.Wait()
}

// waitChildren blocks until all child goroutines complete.
func (s *supervisor) waitChildren(ctx context.Context) {
	s.wg.Wait()
	log.Effect(ctx, log.LogDebug, "all routines finished", nil)
}
