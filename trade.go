package book

import (
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

// TradeInfo describes one side of an execution. The price is the filled
// order's own limit price, preserving per-side price attribution.
type TradeInfo struct {
	OrderID  uint64 `json:"order_id"`
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// Trade pairs the buy-side and sell-side fill details of one match event.
// It is immutable once emitted by the matching loop.
type Trade struct {
	ID        string          `json:"id"`
	Bid       TradeInfo       `json:"bid"`
	Ask       TradeInfo       `json:"ask"`
	Amount    decimal.Decimal `json:"amount"` // quote value of the executed quantity at the ask price
	CreatedAt time.Time       `json:"created_at"`
}

func newTrade(bid *Order, ask *Order, quantity uint64) Trade {
	return Trade{
		ID:        xid.New().String(),
		Bid:       TradeInfo{OrderID: bid.ID, Price: bid.Price, Quantity: quantity},
		Ask:       TradeInfo{OrderID: ask.ID, Price: ask.Price, Quantity: quantity},
		Amount:    notional(ask.Price, quantity),
		CreatedAt: time.Now().UTC(),
	}
}

// notional returns price * quantity as an exact decimal amount.
func notional(price int64, quantity uint64) decimal.Decimal {
	//nolint:gosec // book quantities are bounded well below int64 range
	return decimal.NewFromInt(price).Mul(decimal.NewFromInt(int64(quantity)))
}
