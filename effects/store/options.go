package store

import (
	"context"
	"reflect"

	"github.com/on-the-ground/effect_ive_reducer/effects"
	"github.com/on-the-ground/effect_ive_reducer/effects/binding"
	"github.com/on-the-ground/effect_ive_reducer/effects/configkeys"
	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
	"github.com/on-the-ground/effect_ive_reducer/effects/log"
)

const defaultSourceBufferSize = 64

type Option[S any] func(*options[S])

type options[S any] struct {
	strict           *bool
	sourceBufferSize *int
	equal            func(prev, next S) bool
}

// WithStrictMode makes every update pass invoke the reducer twice with the
// same action.
func WithStrictMode[S any]() Option[S] {
	return func(o *options[S]) {
		strict := true
		o.strict = &strict
	}
}

// WithEquality replaces the check deciding whether a reducer result is a new
// state worth committing.
func WithEquality[S any](equal func(prev, next S) bool) Option[S] {
	return func(o *options[S]) {
		o.equal = equal
	}
}

// WithSourceBufferSize sets how many commits Source buffers before dropping.
func WithSourceBufferSize[S any](size int) Option[S] {
	return func(o *options[S]) {
		o.sourceBufferSize = &size
	}
}

// resolve fills unset options from bindings, then from defaults.
func (o *options[S]) resolve(ctx context.Context) {
	if o.strict == nil {
		strict, err := binding.GetOrDefault(ctx, configkeys.ConfigStoreStrictMode, false)
		if err != nil {
			logEffect(ctx, log.LogWarn, "invalid strict mode binding, using default", map[string]interface{}{
				"err": err.Error(),
			})
		}
		o.strict = &strict
	}
	if o.sourceBufferSize == nil {
		size, err := binding.GetOrDefault(ctx, configkeys.ConfigStoreSourceBufferSize, defaultSourceBufferSize)
		if err != nil {
			logEffect(ctx, log.LogWarn, "invalid source buffer size binding, using default", map[string]interface{}{
				"err": err.Error(),
			})
		}
		o.sourceBufferSize = &size
	}
	if *o.sourceBufferSize < 0 {
		*o.sourceBufferSize = 0
	}
	if o.equal == nil {
		o.equal = sameState[S]
	}
}

// logEffect logs through the log effect when a log handler is registered.
func logEffect(ctx context.Context, level log.LogLevel, msg string, fields map[string]interface{}) {
	if effects.HasEffectHandler(ctx, effectmodel.EffectLog) {
		log.Effect(ctx, level, msg, fields)
	}
}

// sameState is the default bail-out check.
//
// Maps and slices are the same state when they share their backing storage,
// funcs never are, and every other comparable value is compared with ==.
// Values that cannot be compared, such as structs holding a slice, always
// count as a new state.
func sameState[S any](prev, next S) bool {
	pv := reflect.ValueOf(&prev).Elem()
	nv := reflect.ValueOf(&next).Elem()

	if pv.Kind() == reflect.Interface {
		if pv.IsNil() || nv.IsNil() {
			return pv.IsNil() && nv.IsNil()
		}
		pv, nv = pv.Elem(), nv.Elem()
		if pv.Type() != nv.Type() {
			return false
		}
	}

	switch pv.Kind() {
	case reflect.Map:
		return pv.Pointer() == nv.Pointer()
	case reflect.Slice:
		return pv.Pointer() == nv.Pointer() && pv.Len() == nv.Len()
	case reflect.Func:
		return false
	}

	return pv.Comparable() && pv.Equal(nv)
}
