package handlers

import (
	"context"
	"sync"

	effectmodel "github.com/on-the-ground/effect_ive_reducer/effects/internal/model"
)

// --- common interface ---

type WorkerDispatcher[T any] interface {
	GetChannelOf(msg T) chan T
	// Wait blocks until every worker has returned.
	Wait()
}

// --- single queue ---

type singleQueue[T any] struct {
	effectCh chan T
	wg       *sync.WaitGroup
}

func (q singleQueue[T]) GetChannelOf(_ T) chan T {
	return q.effectCh
}

func (q singleQueue[T]) Wait() {
	q.wg.Wait()
}

func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	return newSingleQueue(ctx, bufferSize, handleFn, false)
}

// NewDrainingSingleQueue is NewSingleQueue whose worker handles the messages
// still buffered when ctx is cancelled before it returns.
func NewDrainingSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	return newSingleQueue(ctx, bufferSize, handleFn, true)
}

func newSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
	drain bool,
) WorkerDispatcher[T] {
	effCh := make(chan T, bufferSize)
	wg := &sync.WaitGroup{}
	wg.Add(1)
	ready := make(chan struct{})

	go func(ch chan T) {
		defer wg.Done()
		close(ready)
		work(ctx, ch, handleFn, drain)
	}(effCh)

	<-ready

	return singleQueue[T]{effectCh: effCh, wg: wg}
}

// --- partitioned queue ---

type partitionedQueue[T effectmodel.Partitionable] struct {
	effectChs []chan T
	wg        *sync.WaitGroup
}

// GetChannelOf routes messages with the same PartitionKey to the same worker,
// so they are handled one at a time and in send order.
func (pq partitionedQueue[T]) GetChannelOf(msg T) chan T {
	idx := getIndexByHash(msg, len(pq.effectChs))
	return pq.effectChs[idx]
}

func (pq partitionedQueue[T]) Wait() {
	pq.wg.Wait()
}

func NewPartitionedQueue[T effectmodel.Partitionable](
	ctx context.Context,
	numWorkers, bufferSize int,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	channels := make([]chan T, numWorkers)
	wg := &sync.WaitGroup{}
	ready := sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		ready.Add(1)
		ch := make(chan T, bufferSize)
		go func(ch chan T) {
			defer wg.Done()
			ready.Done()
			work(ctx, ch, handleFn, false)
		}(ch)
		channels[i] = ch
	}
	ready.Wait()
	return partitionedQueue[T]{effectChs: channels, wg: wg}
}

func work[T any](ctx context.Context, ch chan T, handleFn func(context.Context, T), drain bool) {
	for {
		select {
		case msg := <-ch:
			handleFn(ctx, msg)
		case <-ctx.Done():
			for drain {
				select {
				case msg := <-ch:
					handleFn(ctx, msg)
				default:
					return
				}
			}
			return
		}
	}
}
