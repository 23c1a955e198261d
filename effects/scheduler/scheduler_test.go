package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_reducer/effects/binding"
	"github.com/on-the-ground/effect_ive_reducer/effects/configkeys"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
	"github.com/on-the-ground/effect_ive_reducer/effects/log"
	"github.com/on-the-ground/effect_ive_reducer/effects/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestScheduler_AppliesUpdate(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(1, 1))
	defer endOfScheduler()

	applied := false
	err := scheduler.Effect(ctx, scheduler.Update{
		Key: "store-1",
		Apply: func(context.Context) error {
			applied = true
			return nil
		},
	})

	require.NoError(t, err)
	assert.True(t, applied)
}

func TestScheduler_ReturnsApplyError(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(1, 1))
	defer endOfScheduler()

	errBoom := errors.New("boom")
	err := scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { return errBoom },
	})

	assert.ErrorIs(t, err, errBoom)
}

func TestScheduler_RecoversPanics(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(1, 1))
	defer endOfScheduler()

	err := scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { panic("reducer exploded") },
	})
	assert.ErrorIs(t, err, scheduler.ErrUpdatePanicked)
	assert.Contains(t, err.Error(), "reducer exploded")

	// the worker survives the panic
	err = scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { return nil },
	})
	assert.NoError(t, err)
}

func TestScheduler_RecoversPanicsWithoutLogHandler(t *testing.T) {
	ctx, endOfScheduler := scheduler.WithEffectHandler(context.Background(), effectmodel.NewEffectScopeConfig(1, 1))
	defer endOfScheduler()

	err := scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { panic("reducer exploded") },
	})
	assert.ErrorIs(t, err, scheduler.ErrUpdatePanicked)

	err = scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { return nil },
	})
	assert.NoError(t, err)
}

func TestScheduler_SameKeyRunsInDispatchOrder(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(8, 4))
	defer endOfScheduler()

	var order []int
	for i := 0; i < 20; i++ {
		i := i
		err := scheduler.Effect(ctx, scheduler.Update{
			Key: "store-1",
			Apply: func(context.Context) error {
				order = append(order, i)
				return nil
			},
		})
		require.NoError(t, err)
	}

	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestScheduler_ConcurrentDispatchToManyKeys(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(8, 4))
	defer endOfScheduler()

	// each counter is only written by the worker owning its key
	counts := make(map[string]*int)
	var wg sync.WaitGroup
	for k := 0; k < 4; k++ {
		counts[fmt.Sprintf("store-%d", k)] = new(int)
	}

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("store-%d", i%4)
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scheduler.Effect(ctx, scheduler.Update{
				Key: key,
				Apply: func(context.Context) error {
					*counts[key]++
					return nil
				},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	for k := 0; k < 4; k++ {
		assert.Equal(t, 50, *counts[fmt.Sprintf("store-%d", k)])
	}
}

func TestScheduler_ClosedSchedulerRejectsUpdates(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	schedCtx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(1, 1))
	endOfScheduler()

	err := scheduler.Effect(schedCtx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { return nil },
	})
	assert.Error(t, err)
}

func TestScheduler_CallerContextTimeout(t *testing.T) {
	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(1, 1))
	defer endOfScheduler()

	release := make(chan struct{})
	defer close(release)

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := scheduler.Effect(timeoutCtx, scheduler.Update{
		Key: "store-1",
		Apply: func(context.Context) error {
			<-release
			return nil
		},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduler_ConfiguredFromBindings(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	ctx, endOfLogHandler := log.WithTestEffectHandler(ctx)
	defer endOfLogHandler()

	ctx, endOfBinding := binding.WithEffectHandler(ctx, 1, 1, map[string]any{
		configkeys.ConfigEffectSchedulerHandlerBufferSize: 4,
		configkeys.ConfigEffectSchedulerHandlerNumWorkers: 2,
	})
	defer endOfBinding()

	ctx, endOfScheduler, err := scheduler.WithConfiguredEffectHandler(ctx)
	require.NoError(t, err)

	err = scheduler.Effect(ctx, scheduler.Update{
		Key:   "store-1",
		Apply: func(context.Context) error { return nil },
	})
	assert.NoError(t, err)

	endOfScheduler()
}

func TestScheduler_MisconfiguredBinding(t *testing.T) {
	ctx := context.Background()
	ctx, endOfBinding := binding.WithEffectHandler(ctx, 1, 1, map[string]any{
		configkeys.ConfigEffectSchedulerHandlerBufferSize: "four",
	})
	defer endOfBinding()

	_, _, err := scheduler.WithConfiguredEffectHandler(ctx)
	assert.Error(t, err)
}
