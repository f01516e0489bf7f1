package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	req := require.New(t)
	q := New[int]()

	// Given N pushed items
	for i := 0; i < 100; i++ {
		req.True(q.Push(i))
	}
	req.Equal(100, q.Len())

	// Then N pops return them in order
	for i := 0; i < 100; i++ {
		item, ok := q.Pop()
		req.True(ok)
		req.Equal(i, item)
	}
	req.Zero(q.Len())
}

func TestQueue_PopTimeout_Expires(t *testing.T) {
	req := require.New(t)
	q := New[string]()

	start := time.Now()
	item, ok := q.PopTimeout(30 * time.Millisecond)

	req.False(ok)
	req.Empty(item)
	req.GreaterOrEqual(time.Since(start), 30*time.Millisecond)
}

func TestQueue_PopTimeout_WakesOnPush(t *testing.T) {
	req := require.New(t)
	q := New[string]()

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push("hello")
	}()

	item, ok := q.PopTimeout(2 * time.Second)
	req.True(ok)
	req.Equal("hello", item)
}

func TestQueue_Shutdown_DrainsThenCloses(t *testing.T) {
	req := require.New(t)
	q := New[int]()
	q.Push(1)
	q.Push(2)

	// When the queue is shut down
	q.Shutdown()
	q.Shutdown()
	req.True(q.Closed())

	// Then pushes are rejected
	req.False(q.Push(3))

	// And queued items are still delivered before the closed indicator
	item, ok := q.Pop()
	req.True(ok)
	req.Equal(1, item)
	item, ok = q.Pop()
	req.True(ok)
	req.Equal(2, item)
	_, ok = q.Pop()
	req.False(ok)
	_, ok = q.PopTimeout(time.Second)
	req.False(ok)
}

func TestQueue_Shutdown_WakesBlockedConsumer(t *testing.T) {
	req := require.New(t)
	q := New[int]()
	result := make(chan bool, 1)

	// Given a consumer blocked on an empty queue
	go func() {
		_, ok := q.Pop()
		result <- ok
	}()
	time.Sleep(20 * time.Millisecond)

	// When the queue is shut down
	q.Shutdown()

	// Then the consumer returns the closed indicator
	select {
	case ok := <-result:
		req.False(ok)
	case <-time.After(time.Second):
		req.Fail("blocked Pop was not woken by Shutdown")
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	req := require.New(t)
	q := New[int]()
	producers, perProducer := 16, 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	// Per producer order is preserved even when producers interleave
	last := make(map[int]int)
	for received := 0; received < producers*perProducer; received++ {
		item, ok := q.PopTimeout(5 * time.Second)
		req.True(ok)
		p := item / perProducer
		if prev, seen := last[p]; seen {
			req.Greater(item, prev)
		}
		last[p] = item
	}
	wg.Wait()
	req.Zero(q.Len())
}
