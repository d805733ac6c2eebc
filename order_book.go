package book

import (
	"time"
)

// BookStats contains statistics about the order book queues
type BookStats struct {
	AskDepthCount int64
	AskOrderCount int64
	BidDepthCount int64
	BidOrderCount int64
}

// OrderBook is the transactional core of the venue: it accepts submissions,
// cancellations and amendments, keeps resting liquidity in price-time
// priority, and produces trades whenever opposing interest crosses.
//
// The core is single-writer: exactly one goroutine may call the mutating
// operations at a time, and snapshot queries must not interleave with an
// in-progress mutation. Concurrent producers must serialize through
// BookServer (or an equivalent command queue) instead of sharing the core.
type OrderBook struct {
	seqID      uint64 // per-book increasing sequence ID for BookLog production
	bidQueue   *queue
	askQueue   *queue
	publishLog PublishLog
}

// NewOrderBook creates a new order book instance.
// A nil publishLog discards all book events.
func NewOrderBook(publishLog PublishLog) *OrderBook {
	if publishLog == nil {
		publishLog = NewDiscardPublishLog()
	}

	return &OrderBook{
		bidQueue:   newBidQueue(),
		askQueue:   newAskQueue(),
		publishLog: publishLog,
	}
}

func (book *OrderBook) nextSeqID() uint64 {
	book.seqID++
	return book.seqID
}

// SequenceID returns the sequence ID of the last published book event.
func (book *OrderBook) SequenceID() uint64 {
	return book.seqID
}

func validateOrder(order *Order) error {
	if order == nil || order.ID == 0 || order.Price <= 0 || order.Remaining == 0 || order.Remaining > order.Initial {
		return ErrInvalidParam
	}

	if order.Side != Buy && order.Side != Sell {
		return ErrInvalidParam
	}

	switch order.Type {
	case GoodTillCancel, FillAndKill:
	default:
		return ErrInvalidParam
	}

	return nil
}

// AddOrder submits a new order to the book and returns the trades it produced.
//
// Rejections leave the book untouched and return no trades:
//   - ErrInvalidParam for a zero id, non-positive price or zero quantity
//   - ErrDuplicateOrderID if the id is already resting
//   - ErrNoLiquidity for a FillAndKill order that cannot cross on arrival
//
// A FillAndKill remainder left unmatched after the crossing loop is removed
// from the book; its partial fills still stand.
func (book *OrderBook) AddOrder(order *Order) ([]Trade, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}

	if book.bidQueue.order(order.ID) != nil || book.askQueue.order(order.ID) != nil {
		log := newRejectLog(book.nextSeqID(), order, RejectReasonDuplicateID)
		book.publishLog.Publish(log)
		releaseBookLog(log)
		return nil, ErrDuplicateOrderID
	}

	if order.Type == FillAndKill && !book.canCross(order.Side, order.Price) {
		log := newRejectLog(book.nextSeqID(), order, RejectReasonNoLiquidity)
		book.publishLog.Publish(log)
		releaseBookLog(log)
		return nil, ErrNoLiquidity
	}

	if order.Timestamp == 0 {
		order.Timestamp = time.Now().UnixNano()
	}

	myQueue := book.bidQueue
	if order.Side == Sell {
		myQueue = book.askQueue
	}

	logs := make([]*BookLog, 0, 8)
	myQueue.insertOrder(order, false)
	logs = append(logs, newOpenLog(book.nextSeqID(), order))

	trades, matchErr := book.matchOrders()
	for _, trade := range trades {
		logs = append(logs, newMatchLog(book.nextSeqID(), trade))
	}

	if matchErr == nil && order.Type == FillAndKill && myQueue.order(order.ID) != nil {
		// Unfilled immediate-or-discard remainder never rests.
		myQueue.removeOrder(order.Price, order.ID)
		logs = append(logs, newCancelLog(book.nextSeqID(), order))
	}

	book.publishLog.Publish(logs...)
	for _, log := range logs {
		releaseBookLog(log)
	}

	if matchErr != nil {
		logger.Error("matching aborted", "order_id", order.ID, "error", matchErr)
		return trades, matchErr
	}

	return trades, nil
}

// canCross reports whether an order of the given side and price would execute
// against resting opposing liquidity. Used to decide admission of FillAndKill
// orders before they rest.
func (book *OrderBook) canCross(side Side, price int64) bool {
	if side == Buy {
		ask := book.askQueue.peekHeadOrder()
		return ask != nil && ask.Price <= price
	}

	bid := book.bidQueue.peekHeadOrder()
	return bid != nil && bid.Price >= price
}

// matchOrders repeatedly crosses the best bid against the best ask until the
// book no longer crosses. Each iteration pairs the oldest order on each side
// of the crossing levels, executes min(remaining), and removes fully filled
// orders; trades come back in execution order.
//
// A Fill failure means the queues and the id index have desynchronized; the
// loop aborts immediately and propagates the error rather than clamping.
func (book *OrderBook) matchOrders() ([]Trade, error) {
	var trades []Trade

	for {
		bid := book.bidQueue.peekHeadOrder()
		ask := book.askQueue.peekHeadOrder()

		if bid == nil || ask == nil {
			break
		}

		if bid.Price < ask.Price {
			break
		}

		quantity := min(bid.Remaining, ask.Remaining)
		trade := newTrade(bid, ask, quantity)

		if err := book.bidQueue.fillOrder(bid, quantity); err != nil {
			return trades, err
		}
		if err := book.askQueue.fillOrder(ask, quantity); err != nil {
			return trades, err
		}

		trades = append(trades, trade)
	}

	return trades, nil
}

// CancelOrder removes a resting order from the book.
// Cancelling an unknown or already-removed id is a no-op.
func (book *OrderBook) CancelOrder(id uint64) {
	order := book.askQueue.order(id)
	if order != nil {
		book.askQueue.removeOrder(order.Price, id)
		log := newCancelLog(book.nextSeqID(), order)
		book.publishLog.Publish(log)
		releaseBookLog(log)
		return
	}

	order = book.bidQueue.order(id)
	if order != nil {
		book.bidQueue.removeOrder(order.Price, id)
		log := newCancelLog(book.nextSeqID(), order)
		book.publishLog.Publish(log)
		releaseBookLog(log)
		return
	}
}

// AmendOrder replaces a resting order with a fresh one carrying the supplied
// side, price and quantity but the original order type and id. The
// replacement is submitted as a brand-new order, so it loses time priority at
// its new price. Amending an unknown id is a no-op returning no trades.
func (book *OrderBook) AmendOrder(id uint64, side Side, price int64, quantity uint64) ([]Trade, error) {
	myQueue := book.bidQueue
	existing := book.bidQueue.order(id)
	if existing == nil {
		existing = book.askQueue.order(id)
		myQueue = book.askQueue
	}

	if existing == nil {
		return nil, nil
	}

	replacement := NewOrder(id, side, existing.Type, price, quantity)
	if err := validateOrder(replacement); err != nil {
		return nil, err
	}

	oldSide := existing.Side
	oldPrice := existing.Price
	oldQuantity := existing.Remaining

	myQueue.removeOrder(existing.Price, id)

	log := newAmendLog(book.nextSeqID(), replacement, oldSide, oldPrice, oldQuantity)
	book.publishLog.Publish(log)
	releaseBookLog(log)

	return book.AddOrder(replacement)
}

// Size returns the number of resting orders across both sides.
func (book *OrderBook) Size() int {
	return int(book.bidQueue.orderCount() + book.askQueue.orderCount())
}

// LevelInfos returns the aggregated per-price-level view of both sides, one
// entry per non-empty level in best-first order. The slices reflect a single
// consistent point in time as long as the single-writer rule is honored.
func (book *OrderBook) LevelInfos() (bids []LevelInfo, asks []LevelInfo) {
	return book.bidQueue.levelInfos(), book.askQueue.levelInfos()
}

// Stats returns usage statistics for the order book.
func (book *OrderBook) Stats() *BookStats {
	return &BookStats{
		AskDepthCount: book.askQueue.depthCount(),
		AskOrderCount: book.askQueue.orderCount(),
		BidDepthCount: book.bidQueue.depthCount(),
		BidOrderCount: book.bidQueue.orderCount(),
	}
}
