// Package effects is the effect system the reducer host runs on.
//
// Side effects such as logging, configuration lookups, background work and
// the update loop itself are delegated to handlers registered on a
// context.Context. Business logic performs an effect through the context and
// stays unaware of how, or on which goroutine, it is carried out.
//
// # Handlers
//
// A handler is registered with one of the WithXxxEffectHandler functions and
// lives until the returned teardown is called:
//
//   - resumable handlers return a result to the caller (binding, scheduler)
//   - partitionable resumable handlers additionally route payloads by
//     PartitionKey, so payloads sharing a key are handled in order
//   - fire-and-forget handlers return nothing (log, concurrency)
//
// Performing an effect with no handler in the context is a programming error
// and panics.
//
// # Packages
//
//   - log: structured logging through zap
//   - binding: scoped key/value configuration, see configkeys for the keys
//   - concurrency: supervised background goroutines
//   - scheduler: the keyed, sequential update loop
//   - store: reducer state driven by the scheduler
//
// Example:
//
//	func run(ctx context.Context) error {
//	    ctx, endOfLog := log.WithZapEffectHandler(ctx, 16, zap.NewExample())
//	    defer endOfLog()
//
//	    ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, effectmodel.NewEffectScopeConfig(8, 2))
//	    defer endOfScheduler()
//
//	    s, dispatch := store.UseReducer(ctx, reduce, State{})
//	    defer s.Close()
//
//	    return dispatch(ctx, &Action{Kind: "increment"})
//	}
package effects
