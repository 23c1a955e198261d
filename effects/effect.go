package effects

import (
	"context"

	"github.com/on-the-ground/effect_ive_reducer/effects/internal/handlers"
	"github.com/on-the-ground/effect_ive_reducer/effects/internal/helper"
	sharedHelper "github.com/on-the-ground/effect_ive_reducer/shared/helper"
	"go.uber.org/zap"

	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
)

var scopeLogger = zap.NewNop()

// SetScopeLogger sets the logger used for handler lifecycle messages.
// Lifecycle messages are discarded until it is called.
func SetScopeLogger(logger *zap.Logger) {
	scopeLogger = logger
}

// WithResumablePartitionableEffectHandler registers a resumable effect handler for a given effect enum.
//
// This handler supports hash-based partitioning via PartitionKey(), and is suitable for effects
// like state updates where per-key ordering matters.
//
// Usage:
//
//	ctx, cancel := WithResumablePartitionableEffectHandler(ctx, config, MyEffectEnum, handleFn)
//	defer cancel()
func WithResumablePartitionableEffectHandler[P effectmodel.Partitionable, R any](
	ctx context.Context,
	config effectmodel.EffectScopeConfig,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P) (R, error),
	teardown ...func(),
) (context.Context, func() context.Context) {
	td := normalizeTeardown(teardown)
	handler := handlers.NewPartitionableResumableHandler(ctx, config, handleFn, td)
	ctxWith := context.WithValue(ctx, enum, handler)
	scopeLogger.Debug("created resumable effect handler",
		zap.String("effectId", handler.EffectId),
		zap.String("enum", string(enum)),
		zap.Int("numWorkers", config.NumWorkers),
	)

	return ctxWith, func() context.Context {
		handler.Close()
		scopeLogger.Debug("closed resumable effect handler",
			zap.String("effectId", handler.EffectId),
			zap.String("enum", string(enum)),
		)
		return ctx
	}
}

// WithResumableEffectHandler registers a resumable effect handler for a given effect enum.
//
// This handler is suitable for effects that don't require partitioning.
func WithResumableEffectHandler[P any, R any](
	ctx context.Context,
	bufferSize int,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P) (R, error),
	teardown ...func(),
) (context.Context, func() context.Context) {
	td := normalizeTeardown(teardown)
	handler := handlers.NewResumableHandler(ctx, bufferSize, handleFn, td)
	ctxWith := context.WithValue(ctx, enum, handler)
	scopeLogger.Debug("created resumable effect handler",
		zap.String("effectId", handler.EffectId),
		zap.String("enum", string(enum)),
	)

	return ctxWith, func() context.Context {
		handler.Close()
		scopeLogger.Debug("closed resumable effect handler",
			zap.String("effectId", handler.EffectId),
			zap.String("enum", string(enum)),
		)
		return ctx
	}
}

// PerformResumableEffect sends a payload to the resumable effect handler and waits for the result.
//
// Panics if no handler is registered for the given effect enum.
func PerformResumableEffect[P any, R any](
	ctx context.Context,
	enum effectmodel.EffectEnum,
	payload P,
) (R, error) {
	handler := sharedHelper.MustGetTypedValue[handlers.ResumableHandler[P, R]](
		func() (any, error) {
			return helper.GetHandler(ctx, enum)
		},
	)
	res := handler.PerformEffect(ctx, payload)
	return res.Value, res.Err
}

// WithFireAndForgetEffectHandler registers a fire-and-forget effect handler for a given effect enum.
//
// Suitable for one-shot effects like logging or background publishing.
// This handler executes without returning a result.
func WithFireAndForgetEffectHandler[P any](
	ctx context.Context,
	bufferSize int,
	enum effectmodel.EffectEnum,
	handleFn func(context.Context, P),
	teardown ...func(),
) (context.Context, func() context.Context) {
	td := normalizeTeardown(teardown)
	handler := handlers.NewFireAndForgetHandler(ctx, bufferSize, handleFn, td)
	ctxWith := context.WithValue(ctx, enum, handler)
	scopeLogger.Debug("created fire/forget effect handler",
		zap.String("effectId", handler.EffectId),
		zap.String("enum", string(enum)),
	)

	return ctxWith, func() context.Context {
		handler.Close()
		scopeLogger.Debug("closed fire/forget effect handler",
			zap.String("effectId", handler.EffectId),
			zap.String("enum", string(enum)),
		)
		return ctx
	}
}

// FireAndForgetEffect triggers a fire-and-forget effect for the given enum and payload.
//
// The handler will process the payload asynchronously.
// Panics if no handler is registered for the given enum.
func FireAndForgetEffect[P any](
	ctx context.Context,
	enum effectmodel.EffectEnum,
	payload P,
) {
	handler := sharedHelper.MustGetTypedValue[handlers.FireAndForgetHandler[P]](
		func() (any, error) {
			return helper.GetHandler(ctx, enum)
		},
	)
	handler.FireAndForgetEffect(ctx, payload)
}

// HasEffectHandler reports whether a handler for enum is registered in ctx.
func HasEffectHandler(ctx context.Context, enum effectmodel.EffectEnum) bool {
	_, err := helper.GetHandler(ctx, enum)
	return err == nil
}

// normalizeTeardown flattens optional teardown functions into a single callable.
//
// Accepts either 0 or 1 teardown functions. Panics if more than one is passed.
func normalizeTeardown(teardown []func()) func() {
	switch len(teardown) {
	case 1:
		return teardown[0]
	case 0:
		return func() {}
	default:
		panic("normalizeTeardown: only one or zero teardown functions allowed")
	}
}
