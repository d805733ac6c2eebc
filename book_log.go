package book

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type LogType string

const (
	LogTypeOpen   LogType = "open"
	LogTypeMatch  LogType = "match"
	LogTypeCancel LogType = "cancel"
	LogTypeAmend  LogType = "amend"
	LogTypeReject LogType = "reject"
)

// RejectReason represents the reason why an order was rejected.
type RejectReason string

const (
	RejectReasonNone         RejectReason = ""
	RejectReasonNoLiquidity  RejectReason = "no_liquidity"  // FillAndKill: no opposing liquidity at an acceptable price
	RejectReasonDuplicateID  RejectReason = "duplicate_id"  // an order with this id is already resting
	RejectReasonInvalidParam RejectReason = "invalid_param" // non-positive price, zero quantity or zero id
)

// BookLog represents an event in the order book.
// SequenceID is a per-book increasing ID for every event, used for ordering,
// deduplication, and rebuild synchronization in downstream systems.
// Use LogType to determine if the event affects order book state:
// - Open, Match, Cancel, Amend: affect order book state
// - Reject: does not affect order book state
type BookLog struct {
	SequenceID   uint64          `json:"seq_id"`
	TradeID      string          `json:"trade_id,omitempty"` // only set for Match events
	Type         LogType         `json:"type"`
	Side         Side            `json:"side,omitempty"`
	Price        int64           `json:"price,omitempty"`
	Quantity     uint64          `json:"quantity,omitempty"`
	Amount       decimal.Decimal `json:"amount,omitempty"` // executed notional, only set for Match events
	OldSide      Side            `json:"old_side,omitempty"`
	OldPrice     int64           `json:"old_price,omitempty"`
	OldQuantity  uint64          `json:"old_quantity,omitempty"`
	OrderID      uint64          `json:"order_id,omitempty"`
	OrderType    OrderType       `json:"order_type,omitempty"`
	BidOrderID   uint64          `json:"bid_order_id,omitempty"` // only set for Match events
	BidPrice     int64           `json:"bid_price,omitempty"`
	AskOrderID   uint64          `json:"ask_order_id,omitempty"` // only set for Match events
	AskPrice     int64           `json:"ask_price,omitempty"`
	RejectReason RejectReason    `json:"reject_reason,omitempty"` // only set for Reject events
	CreatedAt    time.Time       `json:"created_at"`
}

var bookLogPool = sync.Pool{
	New: func() any {
		return new(BookLog)
	},
}

func acquireBookLog() *BookLog {
	return bookLogPool.Get().(*BookLog)
}

func releaseBookLog(log *BookLog) {
	// Reset structure to zero values.
	// For decimal.Decimal, the zero value represents 0, which is valid.
	*log = BookLog{}
	bookLogPool.Put(log)
}

func newOpenLog(seqID uint64, order *Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeOpen
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Remaining
	log.OrderID = order.ID
	log.OrderType = order.Type
	log.CreatedAt = time.Now().UTC()
	return log
}

func newMatchLog(seqID uint64, trade Trade) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.TradeID = trade.ID
	log.Type = LogTypeMatch
	log.Quantity = trade.Bid.Quantity
	log.Amount = trade.Amount
	log.BidOrderID = trade.Bid.OrderID
	log.BidPrice = trade.Bid.Price
	log.AskOrderID = trade.Ask.OrderID
	log.AskPrice = trade.Ask.Price
	log.CreatedAt = trade.CreatedAt
	return log
}

func newCancelLog(seqID uint64, order *Order) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeCancel
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Remaining
	log.OrderID = order.ID
	log.OrderType = order.Type
	log.CreatedAt = time.Now().UTC()
	return log
}

func newAmendLog(seqID uint64, order *Order, oldSide Side, oldPrice int64, oldQuantity uint64) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeAmend
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Remaining
	log.OldSide = oldSide
	log.OldPrice = oldPrice
	log.OldQuantity = oldQuantity
	log.OrderID = order.ID
	log.OrderType = order.Type
	log.CreatedAt = time.Now().UTC()
	return log
}

func newRejectLog(seqID uint64, order *Order, reason RejectReason) *BookLog {
	log := acquireBookLog()
	log.SequenceID = seqID
	log.Type = LogTypeReject
	log.Side = order.Side
	log.Price = order.Price
	log.Quantity = order.Remaining
	log.OrderID = order.ID
	log.OrderType = order.Type
	log.RejectReason = reason
	log.CreatedAt = time.Now().UTC()
	return log
}
