// Package scheduler is the host update loop that stores dispatch into.
//
// Updates are partitioned by key: all updates sharing a key run one after
// another on the same worker, in the order they were dispatched, while updates
// for other keys may run concurrently on other workers. A store uses its id
// as the key, which gives every store instance strictly sequential reducer
// invocations without any locking in the reducer itself.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/effect_ive_reducer/effects"
	"github.com/on-the-ground/effect_ive_reducer/effects/binding"
	"github.com/on-the-ground/effect_ive_reducer/effects/concurrency"
	"github.com/on-the-ground/effect_ive_reducer/effects/configkeys"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
	"github.com/on-the-ground/effect_ive_reducer/effects/log"
)

// ErrUpdatePanicked wraps the value of a panic raised during an update pass.
var ErrUpdatePanicked = errors.New("update panicked")

// Update is one unit of work for the scheduler.
type Update struct {
	Key   string
	Apply func(ctx context.Context) error
}

// PartitionKey returns the key updates are serialized by.
func (u Update) PartitionKey() string { return u.Key }

// WithEffectHandler registers the scheduler with the given queue configuration.
//
// It also registers the concurrency handler update passes use for background
// work. Recovered panics are logged when a log handler is registered in ctx.
func WithEffectHandler(
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
) (context.Context, func() context.Context) {
	ctx, endOfConcurrency := concurrency.WithEffectHandler(ctx, config.BufferSize)
	return effects.WithResumablePartitionableEffectHandler(
		ctx,
		config,
		effectmodel.EffectScheduler,
		handle,
		func() {
			endOfConcurrency()
		},
	)
}

// WithConfiguredEffectHandler registers the scheduler with the buffer size and
// worker count bound under configkeys.ConfigEffectSchedulerHandler*, falling
// back to one worker with a buffer of one.
func WithConfiguredEffectHandler(ctx context.Context) (context.Context, func() context.Context, error) {
	bufferSize, err := binding.GetOrDefault(ctx, configkeys.ConfigEffectSchedulerHandlerBufferSize, 1)
	if err != nil {
		return ctx, nil, fmt.Errorf("scheduler buffer size: %w", err)
	}
	numWorkers, err := binding.GetOrDefault(ctx, configkeys.ConfigEffectSchedulerHandlerNumWorkers, 1)
	if err != nil {
		return ctx, nil, fmt.Errorf("scheduler worker count: %w", err)
	}
	ctx, end := WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(bufferSize, numWorkers))
	return ctx, end, nil
}

// Effect enqueues u and blocks until it has been applied, ctx is done, or the
// scheduler is closed. It returns the error of Apply, ErrUpdatePanicked if
// Apply panicked, or the reason the update was not applied.
// Panics if no scheduler is registered.
func Effect(ctx context.Context, u Update) error {
	_, err := effects.PerformResumableEffect[Update, struct{}](ctx, effectmodel.EffectScheduler, u)
	return err
}

func handle(ctx context.Context, u Update) (res struct{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUpdatePanicked, r)
			if !effects.HasEffectHandler(ctx, effectmodel.EffectLog) {
				return
			}
			log.Effect(ctx, log.LogError, "update panicked", map[string]interface{}{
				"key":   u.Key,
				"panic": r,
			})
		}
	}()
	return res, u.Apply(ctx)
}
