package trader

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryQueue_SingleFlight(t *testing.T) {
	q := newQueryQueue()

	var running int32
	var maxRunning int32
	var done sync.WaitGroup

	done.Add(2)
	for i := 0; i < 2; i++ {
		q.push(func() {
			cur := atomic.AddInt32(&running, 1)
			if cur > atomic.LoadInt32(&maxRunning) {
				atomic.StoreInt32(&maxRunning, cur)
			}
			go func() {
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				done.Done()
				q.finish()
			}()
		})
	}

	done.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning), "only one query may be in flight")
}

func TestQueryQueue_DispatchSpacing(t *testing.T) {
	q := newQueryQueue()

	starts := make(chan time.Time, 2)
	for i := 0; i < 2; i++ {
		q.push(func() {
			starts <- time.Now()
			q.finish()
		})
	}

	first := <-starts
	var second time.Time
	select {
	case second = <-starts:
	case <-time.After(3 * time.Second):
		t.Fatal("second query never dispatched")
	}

	require.GreaterOrEqual(t, second.Sub(first), 900*time.Millisecond,
		"dispatch starts must be spaced by about a second")
}

func TestQueryQueue_FIFO(t *testing.T) {
	q := newQueryQueue()
	// Burn the initial limiter slot so pushes only enqueue.
	require.True(t, q.limiter.Allow())

	var order []int
	var mu sync.Mutex
	done := make(chan struct{})
	for i := 1; i <= 3; i++ {
		i := i
		q.push(func() {
			mu.Lock()
			order = append(order, i)
			last := len(order) == 3
			mu.Unlock()
			q.finish()
			if last {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queue did not drain")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestQueryQueue_Reset(t *testing.T) {
	q := newQueryQueue()
	require.True(t, q.limiter.Allow())

	ran := make(chan struct{}, 1)
	q.push(func() { ran <- struct{}{} })
	q.reset()

	// After a reset the pending function must be gone even once the limiter
	// would allow it.
	select {
	case <-ran:
		t.Fatal("reset queue still dispatched")
	case <-time.After(1200 * time.Millisecond):
	}
}
