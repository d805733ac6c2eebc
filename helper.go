package book

// DepthChange represents a change in the order book depth.
// Diff is signed: positive adds liquidity at the level, negative removes it.
type DepthChange struct {
	Side  Side
	Price int64
	Diff  int64
}

// CalculateDepthChanges derives the depth deltas implied by a book log.
// A match consumes resting liquidity on both sides of the cross, each at its
// own price, so it yields two changes; the other event types yield at most one.
func CalculateDepthChanges(log *BookLog) []DepthChange {
	switch log.Type {
	case LogTypeOpen:
		return []DepthChange{{
			Side:  log.Side,
			Price: log.Price,
			Diff:  int64(log.Quantity),
		}}
	case LogTypeCancel:
		return []DepthChange{{
			Side:  log.Side,
			Price: log.Price,
			Diff:  -int64(log.Quantity),
		}}
	case LogTypeMatch:
		return []DepthChange{
			{
				Side:  Buy,
				Price: log.BidPrice,
				Diff:  -int64(log.Quantity),
			},
			{
				Side:  Sell,
				Price: log.AskPrice,
				Diff:  -int64(log.Quantity),
			},
		}
	case LogTypeAmend:
		// The replacement is re-announced by the Open or Match logs that
		// follow, so the amend itself only retires the old resting state.
		// OldSide matters: an amend may move the order to the other side.
		return []DepthChange{{
			Side:  log.OldSide,
			Price: log.OldPrice,
			Diff:  -int64(log.OldQuantity),
		}}
	case LogTypeReject:
		// Rejected orders never entered the book, so no depth change.
		return nil
	}

	return nil
}
