package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/on-the-ground/effect_ive_reducer/effects/internal/handlers"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestResumableHandler_ReturnsHandlerResult(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	handler := handlers.NewResumableHandler(
		context.Background(),
		1,
		func(_ context.Context, n int) (string, error) {
			return fmt.Sprintf("n=%d", n), nil
		},
		func() {},
	)
	defer handler.Close()

	res := handler.PerformEffect(context.Background(), 3)
	require.NoError(t, res.Err)
	assert.Equal(t, "n=3", res.Value)
}

func TestResumableHandler_PropagatesHandlerError(t *testing.T) {
	errBoom := errors.New("boom")
	handler := handlers.NewResumableHandler(
		context.Background(),
		1,
		func(_ context.Context, _ int) (int, error) {
			return 0, errBoom
		},
		func() {},
	)
	defer handler.Close()

	res := handler.PerformEffect(context.Background(), 1)
	assert.ErrorIs(t, res.Err, errBoom)
}

func TestResumableHandler_ClosedScope(t *testing.T) {
	handler := handlers.NewResumableHandler(
		context.Background(),
		1,
		func(_ context.Context, n int) (int, error) {
			return n, nil
		},
		func() {},
	)
	handler.Close()

	res := handler.PerformEffect(context.Background(), 1)
	assert.ErrorIs(t, res.Err, handlers.ErrClosedScope)
}

func TestResumableHandler_CallerContextDone(t *testing.T) {
	release := make(chan struct{})
	handler := handlers.NewResumableHandler(
		context.Background(),
		1,
		func(_ context.Context, n int) (int, error) {
			<-release
			return n, nil
		},
		func() {},
	)
	defer handler.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := handler.PerformEffect(ctx, 1)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestPartitionableResumableHandler_SerializesPerKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	running := map[string]bool{}
	overlapped := false

	handler := handlers.NewPartitionableResumableHandler(
		context.Background(),
		effectmodel.NewEffectScopeConfig(4, 4),
		func(_ context.Context, msg dummyMessage) (int, error) {
			// only touched from the worker owning msg.group
			if running[msg.group] {
				overlapped = true
			}
			running[msg.group] = true
			time.Sleep(time.Millisecond)
			running[msg.group] = false
			return msg.id, nil
		},
		func() {},
	)
	defer handler.Close()

	results := make(chan int, 10)
	for i := 0; i < 10; i++ {
		go func(i int) {
			res := handler.PerformEffect(context.Background(), dummyMessage{id: i, group: "same"})
			results <- res.Value
		}(i)
	}

	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		select {
		case v := <-results:
			seen[v] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for results")
		}
	}

	assert.Len(t, seen, 10)
	assert.False(t, overlapped)
}
