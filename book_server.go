package book

import (
	"context"
	"runtime"
	"sync/atomic"
)

// CommandType represents the type of command sent to the book server.
type CommandType int

const (
	CmdAddOrder CommandType = iota
	CmdCancelOrder
	CmdAmendOrder
	CmdLevelInfos
	CmdSize
	CmdStats
	CmdSnapshot
)

// AmendRequest carries the replacement values for an amend command.
type AmendRequest struct {
	OrderID  uint64
	Side     Side
	Price    int64
	Quantity uint64
}

// Command is the unified envelope processed by the server loop.
// A single channel keeps command ordering deterministic.
type Command struct {
	Type    CommandType
	Payload any
	Resp    chan any // optional: for synchronous responses (e.g. CmdLevelInfos)
}

// LevelInfosResult is the response payload of CmdLevelInfos.
type LevelInfosResult struct {
	Bids []LevelInfo
	Asks []LevelInfo
}

// BookServer serializes concurrent producers onto the single-writer core:
// every mutating operation and every read flows through one command channel
// consumed by one goroutine, so no operation ever observes a half-applied
// update. Trades and rejections surface on the book's PublishLog feed.
type BookServer struct {
	book             *OrderBook
	cmdChan          chan Command
	isShutdown       atomic.Bool
	done             chan struct{}
	shutdownComplete chan struct{}
}

// NewBookServer wraps an order book. The caller must not touch the book
// directly once the server starts.
func NewBookServer(book *OrderBook) *BookServer {
	return &BookServer{
		book:             book,
		cmdChan:          make(chan Command, 32768),
		done:             make(chan struct{}),
		shutdownComplete: make(chan struct{}),
	}
}

// Submit enqueues a new order for processing.
// Returns ErrShutdown if the server is shutting down, ErrTimeout if the
// context expires before the command is accepted.
func (s *BookServer) Submit(ctx context.Context, order *Order) error {
	if s.isShutdown.Load() {
		return ErrShutdown
	}

	if order == nil || order.ID == 0 {
		return ErrInvalidParam
	}

	select {
	case s.cmdChan <- Command{Type: CmdAddOrder, Payload: order}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// Cancel enqueues a cancellation request for an order.
func (s *BookServer) Cancel(ctx context.Context, id uint64) error {
	if s.isShutdown.Load() {
		return ErrShutdown
	}

	if id == 0 {
		return nil
	}

	select {
	case s.cmdChan <- Command{Type: CmdCancelOrder, Payload: id}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// Amend enqueues a request to replace an existing order.
func (s *BookServer) Amend(ctx context.Context, req *AmendRequest) error {
	if s.isShutdown.Load() {
		return ErrShutdown
	}

	if req == nil || req.OrderID == 0 || req.Price <= 0 || req.Quantity == 0 {
		return ErrInvalidParam
	}

	select {
	case s.cmdChan <- Command{Type: CmdAmendOrder, Payload: req}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

func (s *BookServer) query(ctx context.Context, cmdType CommandType) (any, error) {
	respChan := make(chan any, 1)

	select {
	case s.cmdChan <- Command{Type: cmdType, Resp: respChan}:
	case <-ctx.Done():
		return nil, ErrTimeout
	}

	select {
	case res := <-respChan:
		return res, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// LevelInfos returns the aggregated per-level view of both sides, consistent
// with respect to every command enqueued before it.
func (s *BookServer) LevelInfos(ctx context.Context) (bids []LevelInfo, asks []LevelInfo, err error) {
	res, err := s.query(ctx, CmdLevelInfos)
	if err != nil {
		return nil, nil, err
	}

	result, _ := res.(*LevelInfosResult)
	if result == nil {
		return nil, nil, nil
	}
	return result.Bids, result.Asks, nil
}

// Size returns the number of resting orders.
func (s *BookServer) Size(ctx context.Context) (int, error) {
	res, err := s.query(ctx, CmdSize)
	if err != nil {
		return 0, err
	}

	size, _ := res.(int)
	return size, nil
}

// Stats returns usage statistics for the order book.
func (s *BookServer) Stats(ctx context.Context) (*BookStats, error) {
	res, err := s.query(ctx, CmdStats)
	if err != nil {
		return nil, err
	}

	stats, _ := res.(*BookStats)
	return stats, nil
}

// Snapshot captures the book state between commands.
func (s *BookServer) Snapshot(ctx context.Context) (*BookSnapshot, error) {
	res, err := s.query(ctx, CmdSnapshot)
	if err != nil {
		return nil, err
	}

	snap, _ := res.(*BookSnapshot)
	return snap, nil
}

// Start runs the server loop to process orders, cancellations and queries.
// Returns nil when Shutdown() is called and all pending commands are drained.
func (s *BookServer) Start() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-s.done:
			return s.drain()
		case cmd := <-s.cmdChan:
			s.process(cmd)
		}
	}
}

func (s *BookServer) process(cmd Command) {
	switch cmd.Type {
	case CmdAddOrder:
		if order, ok := cmd.Payload.(*Order); ok {
			if _, err := s.book.AddOrder(order); err != nil {
				logger.Debug("order rejected", "order_id", order.ID, "error", err)
			}
		}
	case CmdCancelOrder:
		if id, ok := cmd.Payload.(uint64); ok {
			s.book.CancelOrder(id)
		}
	case CmdAmendOrder:
		if req, ok := cmd.Payload.(*AmendRequest); ok {
			if _, err := s.book.AmendOrder(req.OrderID, req.Side, req.Price, req.Quantity); err != nil {
				logger.Debug("amend rejected", "order_id", req.OrderID, "error", err)
			}
		}
	case CmdLevelInfos:
		bids, asks := s.book.LevelInfos()
		s.respond(cmd, &LevelInfosResult{Bids: bids, Asks: asks})
	case CmdSize:
		s.respond(cmd, s.book.Size())
	case CmdStats:
		s.respond(cmd, s.book.Stats())
	case CmdSnapshot:
		s.respond(cmd, s.book.Snapshot())
	}
}

func (s *BookServer) respond(cmd Command, result any) {
	if cmd.Resp == nil {
		return
	}

	select {
	case cmd.Resp <- result:
	default:
		// Non-blocking send, if no one is listening, just drop it
	}
}

// Shutdown signals the server to stop accepting new commands and waits for
// all commands already enqueued to be processed.
// Returns nil if shutdown completed, or ctx.Err() if the context expired.
func (s *BookServer) Shutdown(ctx context.Context) error {
	if s.isShutdown.CompareAndSwap(false, true) {
		close(s.done)
	}

	select {
	case <-s.shutdownComplete:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes all remaining commands in the channel before returning.
func (s *BookServer) drain() error {
	defer close(s.shutdownComplete)

	for {
		select {
		case cmd := <-s.cmdChan:
			// Reads are served too, a caller already blocked on its Resp
			// channel must still get an answer.
			s.process(cmd)
		default:
			// Channel empty, shutdown complete
			return nil
		}
	}
}
