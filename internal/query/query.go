// Package query runs a parameterised fetch with debounce, cancellation of superseded requests
// and latest-wins delivery.
package query

import (
	"context"
	"sync"
	"time"
)

// Fetcher loads T for params. It must honour ctx cancellation.
type Fetcher[P, T any] func(ctx context.Context, params P) (T, error)

// Result is one delivered outcome.
type Result[P, T any] struct {
	Params     P
	Value      T
	Err        error
	Generation uint64
}

// State is a snapshot of the query.
type State[P, T any] struct {
	Params  P
	Value   T
	Err     error
	Loading bool
}

// Query owns at most one pending timer and one in-flight fetch.
type Query[P, T any] struct {
	mu       sync.Mutex
	idle     *sync.Cond
	deliver  sync.Mutex
	ctx      context.Context
	fetch    Fetcher[P, T]
	debounce time.Duration
	onResult func(Result[P, T])

	gen     uint64
	params  P
	value   T
	err     error
	loading bool
	timer   *time.Timer
	cancel  context.CancelFunc
	pending int
	closed  bool
}

// New creates a query bound to ctx. onResult may be nil and must not call Wait.
func New[P, T any](ctx context.Context, fetch Fetcher[P, T], debounce time.Duration, onResult func(Result[P, T])) *Query[P, T] {
	q := &Query[P, T]{ctx: ctx, fetch: fetch, debounce: debounce, onResult: onResult}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Set schedules a fetch for params after the debounce delay. Earlier pending or in-flight work is dropped.
func (q *Query[P, T]) Set(params P) {
	q.schedule(params, q.debounce)
}

// SetNow fetches params immediately.
func (q *Query[P, T]) SetNow(params P) {
	q.schedule(params, 0)
}

// Refresh re-fetches the current params immediately.
func (q *Query[P, T]) Refresh() {
	q.mu.Lock()
	params := q.params
	q.mu.Unlock()
	q.schedule(params, 0)
}

// Wait blocks until no timer is pending, no fetch is in flight and the last result was delivered.
func (q *Query[P, T]) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending > 0 {
		q.idle.Wait()
	}
}

// Snapshot returns the current state.
func (q *Query[P, T]) Snapshot() State[P, T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return State[P, T]{Params: q.params, Value: q.value, Err: q.err, Loading: q.loading}
}

// Close drops pending work and cancels the in-flight fetch. Later calls are ignored.
func (q *Query[P, T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.supersedeLocked()
	q.loading = false
	q.idle.Broadcast()
}

func (q *Query[P, T]) schedule(params P, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.supersedeLocked()
	g := q.gen
	q.params = params
	q.loading = true
	q.pending++

	if delay <= 0 {
		q.launchLocked(g)
		return
	}
	q.timer = time.AfterFunc(delay, func() { q.fire(g) })
}

// supersedeLocked invalidates the current generation.
func (q *Query[P, T]) supersedeLocked() {
	q.gen++
	if q.timer != nil {
		if q.timer.Stop() {
			q.pending--
		}
		q.timer = nil
	}
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

func (q *Query[P, T]) fire(g uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if g != q.gen {
		q.pending--
		q.idle.Broadcast()
		return
	}
	q.timer = nil
	q.launchLocked(g)
}

func (q *Query[P, T]) launchLocked(g uint64) {
	ctx, cancel := context.WithCancel(q.ctx)
	q.cancel = cancel
	params := q.params
	go func() {
		defer cancel()
		value, err := q.fetch(ctx, params)
		q.finish(g, params, value, err)
	}()
}

func (q *Query[P, T]) finish(g uint64, params P, value T, err error) {
	q.deliver.Lock()
	defer q.deliver.Unlock()

	q.mu.Lock()
	current := g == q.gen && !q.closed
	if current {
		if err != nil {
			var zero T
			value = zero
		}
		q.value = value
		q.err = err
		q.loading = false
		q.cancel = nil
	}
	onResult := q.onResult
	q.mu.Unlock()

	if current && onResult != nil {
		onResult(Result[P, T]{Params: params, Value: value, Err: err, Generation: g})
	}

	q.mu.Lock()
	q.pending--
	q.idle.Broadcast()
	q.mu.Unlock()
}
