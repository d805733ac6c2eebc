package book

// BookSnapshot contains the full state of an OrderBook.
// Orders appear in priority order (best price first, oldest first within a
// level), so re-inserting them in sequence reproduces the book exactly.
type BookSnapshot struct {
	SeqID uint64  `json:"seq_id"` // last published BookLog sequence ID
	Bids  []Order `json:"bids"`
	Asks  []Order `json:"asks"`
}

// Snapshot captures the current state of the order book.
// It must run on the book's writer, like every other operation.
func (book *OrderBook) Snapshot() *BookSnapshot {
	return &BookSnapshot{
		SeqID: book.seqID,
		Bids:  book.bidQueue.toSnapshot(),
		Asks:  book.askQueue.toSnapshot(),
	}
}

// Restore resets the order book and rebuilds it from a snapshot, bypassing
// the matching logic. Insertion order preserves the snapshot's priority.
func (book *OrderBook) Restore(snap *BookSnapshot) {
	book.seqID = snap.SeqID
	book.bidQueue = newBidQueue()
	book.askQueue = newAskQueue()

	restoreOrders := func(orders []Order, q *queue) {
		for i := range orders {
			order := orders[i]
			q.insertOrder(&order, false)
		}
	}

	restoreOrders(snap.Bids, book.bidQueue)
	restoreOrders(snap.Asks, book.askQueue)
}
