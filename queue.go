package book

import (
	"github.com/huandu/skiplist"
)

// LevelInfo is the aggregated view of one price level: the level price and
// the total remaining quantity resting there.
type LevelInfo struct {
	Price    int64  `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// priceLevel holds all orders resting at one exact price in arrival order.
// The intrusive linked list gives O(1) removal given the order itself.
type priceLevel struct {
	totalQuantity uint64
	head          *Order
	tail          *Order
	count         int64
}

// queue is one side of the book: a skip list of price levels ordered
// best-price-first, a price -> element index, and an order id index.
type queue struct {
	side        Side
	totalOrders int64
	depths      int64
	depthList   *skiplist.SkipList
	priceIndex  map[int64]*skiplist.Element
	orders      map[uint64]*Order
}

// newBidQueue creates a queue for buy orders.
// The levels are sorted by price in descending order (highest price first).
func newBidQueue() *queue {
	return &queue{
		side: Buy,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 < p2 {
				return 1
			} else if p1 > p2 {
				return -1
			}

			return 0
		})),
		priceIndex: make(map[int64]*skiplist.Element),
		orders:     make(map[uint64]*Order),
	}
}

// newAskQueue creates a queue for sell orders.
// The levels are sorted by price in ascending order (lowest price first).
func newAskQueue() *queue {
	return &queue{
		side: Sell,
		depthList: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(int64)
			p2, _ := rhs.(int64)

			if p1 > p2 {
				return 1
			} else if p1 < p2 {
				return -1
			}

			return 0
		})),
		priceIndex: make(map[int64]*skiplist.Element),
		orders:     make(map[uint64]*Order),
	}
}

// order finds an order by its ID.
func (q *queue) order(id uint64) *Order {
	return q.orders[id]
}

// insertOrder inserts an order into the queue.
// It updates the price index and depth list.
func (q *queue) insertOrder(order *Order, isFront bool) {
	el, ok := q.priceIndex[order.Price]
	if ok {
		level, _ := el.Value.(*priceLevel)
		if isFront {
			// Push Front
			order.next = level.head
			order.prev = nil
			if level.head != nil {
				level.head.prev = order
			}
			level.head = order
			if level.tail == nil {
				level.tail = order
			}
		} else {
			// Push Back
			order.prev = level.tail
			order.next = nil
			if level.tail != nil {
				level.tail.next = order
			}
			level.tail = order
			if level.head == nil {
				level.head = order
			}
		}

		level.totalQuantity += order.Remaining
		level.count++
		q.orders[order.ID] = order
		q.totalOrders++
	} else {
		level := &priceLevel{
			head:          order,
			tail:          order,
			totalQuantity: order.Remaining,
			count:         1,
		}
		order.next = nil
		order.prev = nil

		q.orders[order.ID] = order

		el := q.depthList.Set(order.Price, level)
		q.priceIndex[order.Price] = el

		q.totalOrders++
		q.depths++
	}
}

// removeOrder removes an order from the queue by price and ID.
// It also cleans up the price level if it becomes empty.
func (q *queue) removeOrder(price int64, id uint64) {
	skipElement, ok := q.priceIndex[price]
	if !ok {
		return
	}
	level, _ := skipElement.Value.(*priceLevel)

	order, ok := q.orders[id]
	if !ok {
		return
	}

	// Remove from linked list
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		level.head = order.next
	}

	if order.next != nil {
		order.next.prev = order.prev
	} else {
		level.tail = order.prev
	}

	// Clear pointers to avoid leaks
	order.next = nil
	order.prev = nil

	level.totalQuantity -= order.Remaining
	level.count--
	delete(q.orders, id)
	q.totalOrders--

	if level.count == 0 {
		q.depthList.RemoveElement(skipElement)
		delete(q.priceIndex, price)
		q.depths--
	}
}

// fillOrder executes quantity against the order in-place, keeping the level
// total in sync. A fully filled order is removed from the queue.
func (q *queue) fillOrder(order *Order, quantity uint64) error {
	if err := order.Fill(quantity); err != nil {
		return err
	}

	if el, ok := q.priceIndex[order.Price]; ok {
		level, _ := el.Value.(*priceLevel)
		level.totalQuantity -= quantity
	}

	if order.Filled() {
		q.removeOrder(order.Price, order.ID)
	}

	return nil
}

// peekHeadOrder returns the order at the front of the queue (best price,
// oldest arrival) without removing it.
func (q *queue) peekHeadOrder() *Order {
	el := q.depthList.Front()
	if el == nil {
		return nil
	}

	level, _ := el.Value.(*priceLevel)
	return level.head
}

// popHeadOrder removes and returns the order at the front of the queue.
func (q *queue) popHeadOrder() *Order {
	ord := q.peekHeadOrder()

	if ord != nil {
		q.removeOrder(ord.Price, ord.ID)
	}

	return ord
}

// orderCount returns the total number of orders in the queue.
func (q *queue) orderCount() int64 {
	return q.totalOrders
}

// depthCount returns the number of price levels in the queue.
func (q *queue) depthCount() int64 {
	return q.depths
}

// totalQuantityAt returns the aggregate remaining quantity at a price level.
func (q *queue) totalQuantityAt(price int64) uint64 {
	el, ok := q.priceIndex[price]
	if !ok {
		return 0
	}

	level, _ := el.Value.(*priceLevel)
	return level.totalQuantity
}

// levelInfos returns one entry per non-empty price level in best-first order.
func (q *queue) levelInfos() []LevelInfo {
	result := make([]LevelInfo, 0, q.depths)

	el := q.depthList.Front()
	for el != nil {
		level, _ := el.Value.(*priceLevel)
		price, _ := el.Key().(int64)
		result = append(result, LevelInfo{
			Price:    price,
			Quantity: level.totalQuantity,
		})
		el = el.Next()
	}

	return result
}

// toSnapshot serializes the queue into a slice of Order values.
// It iterates through the skip list (price levels) and then the linked list
// (orders) to preserve priority.
func (q *queue) toSnapshot() []Order {
	snapshots := make([]Order, 0, q.totalOrders)

	elem := q.depthList.Front()
	for elem != nil {
		level := elem.Value.(*priceLevel)

		order := level.head
		for order != nil {
			snapshots = append(snapshots, Order{
				ID:        order.ID,
				Side:      order.Side,
				Type:      order.Type,
				Price:     order.Price,
				Initial:   order.Initial,
				Remaining: order.Remaining,
				Timestamp: order.Timestamp,
			})
			order = order.next
		}

		elem = elem.Next()
	}

	return snapshots
}
