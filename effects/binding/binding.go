package binding

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/effect_ive_reducer/effects"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
)

// Payload defines a key-based lookup payload.
// Used as input to the Binding effect.
type Payload string

// PartitionKey routes lookups of the same key to the same worker.
func (bp Payload) PartitionKey() string {
	return string(bp)
}

// ErrKeyNotFound is returned when neither this scope nor any upper scope binds the key.
var ErrKeyNotFound = errors.New("key not found")

// WithEffectHandler registers a resumable effect handler for bindings.
// With more than one worker, lookups are partitioned by key.
//
//   - Accepts a key-value map used for lookups.
//   - Allows fallback to upper scopes if a key is not found locally.
//   - Returns a context with the effect handler registered.
//   - Returns a teardown function to close the handler.
//   - The teardown function should be called when the effect handler is no longer needed.
//   - If the teardown function is called early, the effect handler will be closed,
//     you should use the context returned by the teardown function.
func WithEffectHandler(
	ctx context.Context,
	bufferSize, numWorkers int,
	bindingMap map[string]any,
) (context.Context, func() context.Context) {
	bindingHandler := &bindingHandler{
		bindingMap: normalizeBindingMap(bindingMap),
	}
	config := effectmodel.NewEffectScopeConfig(bufferSize, numWorkers)
	if config.NumWorkers == 1 {
		return effects.WithResumableEffectHandler[Payload, any](
			ctx,
			config.BufferSize,
			effectmodel.EffectBinding,
			bindingHandler.handle,
		)
	}
	return effects.WithResumablePartitionableEffectHandler[Payload, any](
		ctx,
		config,
		effectmodel.EffectBinding,
		bindingHandler.handle,
	)
}

// Effect performs a key-based lookup using the Binding effect handler.
//
// Returns either the value found or an error if the key is not found and no upper scope provides it.
// Panics if no binding handler is registered.
func Effect(ctx context.Context, key string) (val any, err error) {
	return effects.PerformResumableEffect[Payload, any](ctx, effectmodel.EffectBinding, Payload(key))
}

// normalizeBindingMap copies bm so later changes by the caller are not observed.
func normalizeBindingMap(bm map[string]any) map[string]any {
	normalized := make(map[string]any, len(bm))
	for k, v := range bm {
		normalized[k] = v
	}
	return normalized
}

// delegateBindingEffect is an internal helper for performing the binding effect directly.
func delegateBindingEffect(upperCtx context.Context, key string) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok && errors.Is(rErr, effectmodel.ErrNoEffectHandler) {
				res = nil
				err = fmt.Errorf("%w: %s", ErrKeyNotFound, key)
				return
			}
			panic(r)
		}
	}()

	// Delegate the effect to the upper handler
	return Effect(upperCtx, key)
}

type bindingHandler struct {
	bindingMap map[string]any
}

// handle looks up the key in the local bindingMap.
// - If found: returns the value.
// - If not found: attempts to delegate the effect to an upper handler (if available).
// - Otherwise: returns a key-not-found error.
func (bh bindingHandler) handle(ctx context.Context, payload Payload) (any, error) {
	key := string(payload)
	v, ok := bh.bindingMap[key]
	if !ok {
		return delegateBindingEffect(ctx, key)
	}
	return v, nil
}
