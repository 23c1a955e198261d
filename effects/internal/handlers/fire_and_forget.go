package handlers

import (
	"context"
)

// NewFireAndForgetHandler starts a single worker for handleFn.
// Payloads already enqueued when the handler is closed are still handled.
func NewFireAndForgetHandler[P any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, P),
	teardown func(),
) FireAndForgetHandler[P] {
	ctx, cancelFn := context.WithCancel(ctx)
	return FireAndForgetHandler[P]{
		effectScope: newEffectScope(
			NewDrainingSingleQueue(ctx, bufferSize, func(ctx context.Context, msg fireAndForgetEffectMessage[P]) {
				handleFn(ctx, msg.payload)
			}),
			cancelFn,
			teardown,
		),
	}
}

type FireAndForgetHandler[P any] struct {
	*effectScope[fireAndForgetEffectMessage[P]]
}

// FireAndForgetEffect enqueues payload and returns without waiting for it to be handled.
// Payloads sent after Close, or while ctx is done, are dropped.
func (ffh FireAndForgetHandler[P]) FireAndForgetEffect(ctx context.Context, payload P) {
	_ = ffh.send(ctx, fireAndForgetEffectMessage[P]{payload: payload})
}

type fireAndForgetEffectMessage[P any] struct {
	payload P
}
