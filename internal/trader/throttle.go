package trader

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// retryBackoff is how long a blocked dispatch waits before trying again.
const retryBackoff = 50 * time.Millisecond

// queryQueue serializes counter queries. The counter rejects queries sent
// faster than one per second and answers exactly one at a time, so the queue
// dispatches a single query, waits for its terminal response row, and only
// then releases the next one. Dispatch starts are spaced by the limiter.
type queryQueue struct {
	mu       sync.Mutex
	pending  []func()
	inFlight bool
	limiter  *rate.Limiter
}

func newQueryQueue() *queryQueue {
	return &queryQueue{
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// push enqueues fn and attempts a dispatch.
func (q *queryQueue) push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	q.dispatch()
}

// dispatch runs the head of the queue if nothing is in flight and the rate
// limiter has a slot. When the limiter refuses, a retry is scheduled instead
// of blocking the caller.
func (q *queryQueue) dispatch() {
	q.mu.Lock()
	if len(q.pending) == 0 || q.inFlight {
		q.mu.Unlock()
		return
	}
	if !q.limiter.Allow() {
		q.mu.Unlock()
		time.AfterFunc(retryBackoff, q.dispatch)
		return
	}
	fn := q.pending[0]
	q.pending = q.pending[1:]
	q.inFlight = true
	q.mu.Unlock()

	fn()
}

// finish marks the in-flight query complete and pulls the next one.
func (q *queryQueue) finish() {
	q.mu.Lock()
	q.inFlight = false
	q.mu.Unlock()
	q.dispatch()
}

// reset drops all pending queries and clears the in-flight flag. Used when a
// session ends with queries still queued.
func (q *queryQueue) reset() {
	q.mu.Lock()
	q.pending = nil
	q.inFlight = false
	q.mu.Unlock()
}
