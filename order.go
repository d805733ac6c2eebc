package book

import "fmt"

type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

type OrderType string

const (
	// GoodTillCancel orders rest in the book until fully filled or cancelled.
	GoodTillCancel OrderType = "good_till_cancel"

	// FillAndKill orders execute immediately against available liquidity;
	// any unfilled remainder is discarded instead of resting.
	FillAndKill OrderType = "fill_and_kill"
)

// Order represents the state of an order in the order book.
// Once accepted, the order is owned by the book; callers must not mutate it.
type Order struct {
	ID        uint64    `json:"id"`
	Side      Side      `json:"side"`
	Type      OrderType `json:"type"`
	Price     int64     `json:"price"`
	Initial   uint64    `json:"initial"`
	Remaining uint64    `json:"remaining"`
	Timestamp int64     `json:"timestamp"` // Unix nano, creation time

	// Intrusive linked list pointers (ignored by JSON)
	next *Order
	prev *Order
}

// NewOrder creates an order with remaining quantity equal to the initial quantity.
func NewOrder(id uint64, side Side, orderType OrderType, price int64, quantity uint64) *Order {
	return &Order{
		ID:        id,
		Side:      side,
		Type:      orderType,
		Price:     price,
		Initial:   quantity,
		Remaining: quantity,
	}
}

// Fill reduces the remaining quantity by quantity.
// Filling more than the remaining quantity is a matching-engine bug, not a
// caller error; it returns a wrapped ErrOverfill and leaves the order untouched.
func (o *Order) Fill(quantity uint64) error {
	if quantity > o.Remaining {
		return fmt.Errorf("order %d: fill %d exceeds remaining %d: %w", o.ID, quantity, o.Remaining, ErrOverfill)
	}
	o.Remaining -= quantity
	return nil
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool {
	return o.Remaining == 0
}

// FilledQuantity returns the executed portion of the order.
func (o *Order) FilledQuantity() uint64 {
	return o.Initial - o.Remaining
}
