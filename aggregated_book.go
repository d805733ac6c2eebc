package book

import (
	"sync/atomic"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a simplified view of the order book,
// tracking only price levels and their aggregated quantities (depth).
// It is designed for downstream services that need to rebuild
// order book state from BookLog events received over a feed.
type AggregatedBook struct {
	seqID        atomic.Uint64 // last processed SequenceID for gap detection and deduplication
	ask          *treemap.TreeMap[int64, uint64]
	bid          *treemap.TreeMap[int64, uint64]
	tradedAmount decimal.Decimal // cumulative executed notional across all replayed matches
}

// NewAggregatedBook creates a new AggregatedBook instance with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	ab := &AggregatedBook{}
	ab.reset()
	return ab
}

func (ab *AggregatedBook) reset() {
	ab.ask = treemap.NewWithKeyCompare[int64, uint64](func(a, b int64) bool {
		return a < b
	})
	ab.bid = treemap.NewWithKeyCompare[int64, uint64](func(a, b int64) bool {
		return a > b
	})
}

// SequenceID returns the last processed sequence ID.
// Used for synchronization and gap detection during rebuild.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID.Load()
}

// TradedAmount returns the cumulative executed notional observed via Replay.
func (ab *AggregatedBook) TradedAmount() decimal.Decimal {
	return ab.tradedAmount
}

// Replay applies a BookLog event to update the aggregated book state.
// Events at or below the current sequence ID are duplicates and are skipped;
// a sequence jump of more than one returns ErrSequenceGap and leaves the
// book untouched so the caller can resynchronize from a snapshot.
func (ab *AggregatedBook) Replay(log *BookLog) error {
	last := ab.seqID.Load()
	if log.SequenceID <= last {
		return nil
	}
	if log.SequenceID != last+1 {
		return ErrSequenceGap
	}

	for _, change := range CalculateDepthChanges(log) {
		ab.apply(change)
	}

	if log.Type == LogTypeMatch {
		ab.tradedAmount = ab.tradedAmount.Add(log.Amount)
	}

	ab.seqID.Store(log.SequenceID)
	return nil
}

func (ab *AggregatedBook) apply(change DepthChange) {
	side := ab.bid
	if change.Side == Sell {
		side = ab.ask
	}

	current, _ := side.Get(change.Price)
	next := int64(current) + change.Diff
	if next <= 0 {
		side.Del(change.Price)
		return
	}
	side.Set(change.Price, uint64(next))
}

// OnRebuild resets the aggregated book from a snapshot of level infos.
// This should be called before replaying events produced after the snapshot.
func (ab *AggregatedBook) OnRebuild(seqID uint64, bids []LevelInfo, asks []LevelInfo) {
	ab.reset()
	for _, level := range bids {
		ab.bid.Set(level.Price, level.Quantity)
	}
	for _, level := range asks {
		ab.ask.Set(level.Price, level.Quantity)
	}
	ab.tradedAmount = decimal.Zero
	ab.seqID.Store(seqID)
}

// Depth returns the aggregated quantity at a specific price level for the
// given side. Returns zero if the price level does not exist.
func (ab *AggregatedBook) Depth(side Side, price int64) uint64 {
	tree := ab.bid
	if side == Sell {
		tree = ab.ask
	}

	quantity, _ := tree.Get(price)
	return quantity
}

// Levels returns up to limit levels for the given side in best-first order.
// A zero limit returns all levels.
func (ab *AggregatedBook) Levels(side Side, limit int) []LevelInfo {
	tree := ab.bid
	if side == Sell {
		tree = ab.ask
	}

	result := make([]LevelInfo, 0, tree.Len())
	for it := tree.Iterator(); it.Valid(); it.Next() {
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, LevelInfo{Price: it.Key(), Quantity: it.Value()})
	}

	return result
}

// OnEvent lets an AggregatedBook act as the consumer of a BookLog feed.
func (ab *AggregatedBook) OnEvent(log *BookLog) {
	if err := ab.Replay(log); err != nil {
		logger.Error("aggregated book replay failed", "seq_id", log.SequenceID, "error", err)
	}
}
