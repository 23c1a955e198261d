// Package store is the reducer-state primitive: it holds a current state and
// hands out a dispatch function that runs actions through a reducer.
//
// Dispatches are executed by the scheduler effect handler, keyed by the store
// id, so the reducer of one store is never invoked concurrently. A result that
// is the same as the previous state is not committed; otherwise subscribers are
// called in subscription order and a Commit is published on Source.
//
// UseReducerWithEffects is UseReducer with the reducer wrapped by
// reducer.WithEffects:
//
//	ctx, endOfLog := log.WithZapEffectHandler(ctx, 16, logger)
//	defer endOfLog()
//	ctx, endOfScheduler := scheduler.WithEffectHandler(ctx, config)
//	defer endOfScheduler()
//
//	s, dispatch := store.UseReducerWithEffects(ctx, reduce, State{Value: "initial"}, before, after,
//	    store.WithStrictMode[State]())
//	defer s.Close()
//
//	if err := dispatch(ctx, &Action{Type: "set-value", Payload: "next-value"}); err != nil {
//	    return err
//	}
//	s.State() // State{Value: "next-value"}
//
// In strict mode every update pass invokes the reducer twice with the same
// action pointer. Plain reducers see both calls; reducers wrapped with effects
// run their effects once and serve the second call from their memo.
//
// Subscribers run on the scheduler worker. They must not dispatch to the same
// store synchronously, which would wait on the worker that is running them.
package store
