package book

import "errors"

var (
	ErrInvalidParam     = errors.New("the param is invalid")
	ErrDuplicateOrderID = errors.New("an order with this id already exists")
	ErrNoLiquidity      = errors.New("there is not enough depth to fill the order")
	ErrOverfill         = errors.New("fill exceeds the order's remaining quantity")
	ErrSequenceGap      = errors.New("book log sequence gap detected")
	ErrTimeout          = errors.New("timeout")
	ErrShutdown         = errors.New("order book is shutting down")
)
