package book

import "context"

// FeedPublisher fans book events out to a downstream consumer through an
// MPSC ring buffer, keeping market-data delivery off the matching thread.
//
// It satisfies the PublishLog contract by cloning every log before Publish
// returns: the originals are recycled to a pool by the order book.
type FeedPublisher struct {
	ring *RingBuffer[*BookLog]
}

// NewFeedPublisher creates a feed with the given ring capacity (a power of 2)
// delivering to handler, and starts the consumer goroutine.
func NewFeedPublisher(capacity int64, handler EventHandler[*BookLog]) *FeedPublisher {
	feed := &FeedPublisher{
		ring: NewRingBuffer[*BookLog](capacity, handler),
	}
	feed.ring.Start()
	return feed
}

// Publish clones each log and hands it to the ring buffer.
func (feed *FeedPublisher) Publish(logs ...*BookLog) {
	for _, log := range logs {
		cpy := new(BookLog)
		*cpy = *log
		feed.ring.Publish(cpy)
	}
}

// Pending returns the number of undelivered events.
func (feed *FeedPublisher) Pending() int64 {
	return feed.ring.PendingEvents()
}

// Shutdown stops the feed after draining every published event.
func (feed *FeedPublisher) Shutdown(ctx context.Context) error {
	return feed.ring.Shutdown(ctx)
}
