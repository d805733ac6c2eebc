package book

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEvent is a simple event type for testing.
type testEvent struct {
	ID int64
}

// funcHandler adapts a function to the EventHandler interface.
type funcHandler[T any] struct {
	fn func(event T)
}

func (h *funcHandler[T]) OnEvent(event T) {
	h.fn(event)
}

func TestRingBufferBasicOperations(t *testing.T) {
	var processed []int64
	var mu sync.Mutex

	handler := &funcHandler[testEvent]{
		fn: func(e testEvent) {
			mu.Lock()
			processed = append(processed, e.ID)
			mu.Unlock()
		},
	}

	rb := NewRingBuffer[testEvent](16, handler)
	rb.Start()

	for i := int64(1); i <= 10; i++ {
		rb.Publish(testEvent{ID: i})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := rb.Shutdown(ctx)
	require.NoError(t, err)

	// Verify all events were processed in order
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, processed, 10)
	for i := int64(1); i <= 10; i++ {
		assert.Equal(t, i, processed[i-1])
	}
}

func TestRingBufferWrapsAroundCapacity(t *testing.T) {
	var count int64
	var mu sync.Mutex

	handler := &funcHandler[testEvent]{
		fn: func(e testEvent) {
			mu.Lock()
			count++
			mu.Unlock()
		},
	}

	rb := NewRingBuffer[testEvent](8, handler)
	rb.Start()

	// Publish far more events than the capacity; producers must wait for
	// the consumer instead of overwriting unread slots.
	for i := int64(0); i < 100; i++ {
		rb.Publish(testEvent{ID: i})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rb.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(100), count)
}

func TestRingBufferMultipleProducers(t *testing.T) {
	const producers = 8
	const perProducer = 500

	var mu sync.Mutex
	seen := make(map[int64]int)

	handler := &funcHandler[testEvent]{
		fn: func(e testEvent) {
			mu.Lock()
			seen[e.ID]++
			mu.Unlock()
		},
	}

	rb := NewRingBuffer[testEvent](1024, handler)
	rb.Start()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				rb.Publish(testEvent{ID: int64(p*perProducer + i)})
			}
		}(p)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rb.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, producers*perProducer)
	for id, n := range seen {
		assert.Equal(t, 1, n, "event %d delivered %d times", id, n)
	}
}

func TestRingBufferPublishAfterShutdown(t *testing.T) {
	var count int
	var mu sync.Mutex

	handler := &funcHandler[testEvent]{
		fn: func(e testEvent) {
			mu.Lock()
			count++
			mu.Unlock()
		},
	}

	rb := NewRingBuffer[testEvent](16, handler)
	rb.Start()

	require.NoError(t, rb.Shutdown(context.Background()))

	rb.Publish(testEvent{ID: 1})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestRingBufferRequiresPowerOfTwo(t *testing.T) {
	handler := &funcHandler[testEvent]{fn: func(e testEvent) {}}

	assert.Panics(t, func() {
		NewRingBuffer[testEvent](10, handler)
	})
	assert.Panics(t, func() {
		NewRingBuffer[testEvent](0, handler)
	})
	assert.NotPanics(t, func() {
		NewRingBuffer[testEvent](1, handler)
	})
}

func TestFeedPublisherDeliversToAggregatedBook(t *testing.T) {
	ab := NewAggregatedBook()
	feed := NewFeedPublisher(1024, ab)

	book := NewOrderBook(feed)

	_, err := book.AddOrder(NewOrder(1, Sell, GoodTillCancel, 100, 10))
	require.NoError(t, err)
	_, err = book.AddOrder(NewOrder(2, Buy, GoodTillCancel, 100, 4))
	require.NoError(t, err)
	book.CancelOrder(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, feed.Shutdown(ctx))

	assert.Equal(t, book.SequenceID(), ab.SequenceID())
	assert.Equal(t, uint64(0), ab.Depth(Sell, 100))
	assert.Equal(t, uint64(0), ab.Depth(Buy, 100))
	assert.Equal(t, int64(0), feed.Pending())
}
