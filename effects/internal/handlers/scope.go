package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClosedScope is returned to performers whose effect could not be handled
// because the handler scope was closed first.
var ErrClosedScope = errors.New("effect scope is closed")

// effectScope owns the workers of one registered handler.
//
// Sending is safe from any goroutine. Close must not be called from inside
// the handler's own handleFn: it waits for the workers to return.
type effectScope[T any] struct {
	EffectId   string
	dispatcher WorkerDispatcher[T]
	done       chan struct{}
	closeFn    func()
	closeOnce  sync.Once
}

// Close stops the workers, waits for them and runs the teardown. It is idempotent.
func (es *effectScope[T]) Close() {
	es.closeOnce.Do(func() {
		close(es.done)
		es.closeFn()
	})
}

// Done is closed once Close has been called.
func (es *effectScope[T]) Done() <-chan struct{} {
	return es.done
}

// send enqueues msg unless ctx or the scope ends first.
func (es *effectScope[T]) send(ctx context.Context, msg T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-es.done:
		return ErrClosedScope
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-es.done:
		return ErrClosedScope
	case es.dispatcher.GetChannelOf(msg) <- msg:
		return nil
	}
}

func newEffectScope[T any](
	dispatcher WorkerDispatcher[T],
	cancelFn context.CancelFunc,
	teardown func(),
) *effectScope[T] {
	return &effectScope[T]{
		EffectId:   uuid.New().String(),
		dispatcher: dispatcher,
		done:       make(chan struct{}),
		closeFn: func() {
			cancelFn()
			dispatcher.Wait()
			teardown()
		},
	}
}
