package handlers

import (
	"context"

	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
)

func NewResumableHandler[P any, R any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, P) (R, error),
	teardown func(),
) ResumableHandler[P, R] {
	ctx, cancelFn := context.WithCancel(ctx)
	return ResumableHandler[P, R]{
		effectScope: newEffectScope(
			NewSingleQueue(ctx, bufferSize, resume(handleFn)),
			cancelFn,
			teardown,
		),
	}
}

func NewPartitionableResumableHandler[P effectmodel.Partitionable, R any](
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
	handleFn func(context.Context, P) (R, error),
	teardown func(),
) ResumableHandler[P, R] {
	ctx, cancelFn := context.WithCancel(ctx)
	return ResumableHandler[P, R]{
		effectScope: newEffectScope(
			NewPartitionedQueue(ctx, config.NumWorkers, config.BufferSize, resume(handleFn)),
			cancelFn,
			teardown,
		),
	}
}

func resume[P any, R any](
	handleFn func(context.Context, P) (R, error),
) func(context.Context, ResumableEffectMessage[P, R]) {
	return func(ctx context.Context, msg ResumableEffectMessage[P, R]) {
		// buffered, never blocks
		msg.ResumeCh <- ResumableResultFrom(handleFn(ctx, msg.Payload))
		close(msg.ResumeCh)
	}
}

type ResumableHandler[P any, R any] struct {
	*effectScope[ResumableEffectMessage[P, R]]
}

// PerformEffect sends payload to the handler and waits for its result,
// for ctx to be done, or for the scope to close.
func (rh ResumableHandler[P, R]) PerformEffect(ctx context.Context, payload P) ResumableResult[R] {
	resumeCh := make(chan ResumableResult[R], 1)

	msg := ResumableEffectMessage[P, R]{
		Payload:  payload,
		ResumeCh: resumeCh,
	}
	if err := rh.send(ctx, msg); err != nil {
		return ResumableResult[R]{Err: err}
	}

	select {
	case res := <-resumeCh:
		return res
	case <-ctx.Done():
		return ResumableResult[R]{Err: ctx.Err()}
	case <-rh.done:
		select {
		case res := <-resumeCh:
			return res
		default:
			return ResumableResult[R]{Err: ErrClosedScope}
		}
	}
}

// ResumableResult represents the result of handled effects.
type ResumableResult[T any] struct {
	Value T
	Err   error
}

func ResumableResultFrom[R any](res R, err error) ResumableResult[R] {
	return ResumableResult[R]{Value: res, Err: err}
}

var _ effectmodel.Partitionable = ResumableEffectMessage[any, any]{}

type ResumableEffectMessage[P any, R any] struct {
	Payload  P
	ResumeCh chan ResumableResult[R]
}

func (rem ResumableEffectMessage[P, R]) PartitionKey() string {
	if p, ok := any(rem.Payload).(effectmodel.Partitionable); ok {
		return p.PartitionKey()
	}
	return ""
}
