// Package book implements a single-symbol, price-time priority limit order
// book. It holds no locks of its own; callers (internal/manager,
// internal/engine) serialize access per symbol.
package book

import (
	"container/list"
	"sort"

	"apexmatch/internal/domain"

	"github.com/shopspring/decimal"
)

// level is one price point on a side of the book: a FIFO queue of resting
// orders. container/list gives O(1) removal via a stored *list.Element,
// which a TreeMap+Queue (the reference implementation's structure) gets
// for free from Queue.remove but costs a library here; no ordered-map or
// B-tree library appears anywhere in the example pack, so the price
// ladder itself is a sorted slice searched with sort.Search instead.
type level struct {
	price  decimal.Decimal
	orders *list.List
}

func newLevel(price decimal.Decimal) *level {
	return &level{price: price, orders: list.New()}
}

func (l *level) totalQuantity() decimal.Decimal {
	total := decimal.Zero
	for e := l.orders.Front(); e != nil; e = e.Next() {
		total = total.Add(e.Value.(*domain.Order).Remaining())
	}
	return total
}

// location lets RemoveOrder find an order's queue position in O(1)
// without scanning every level.
type location struct {
	side  domain.Side
	level *level
	elem  *list.Element
}

// OrderBook is the price ladder for one symbol. Bids are sorted with the
// highest price first, asks with the lowest price first, so Best always
// reads index 0.
type OrderBook struct {
	Symbol string

	bids []*level // descending by price
	asks []*level // ascending by price

	index map[string]*location
}

// New creates an empty order book for symbol.
func New(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		index:  make(map[string]*location),
	}
}

// BestBid returns the highest resting buy price, or false if the bid side
// is empty.
func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	if len(b.bids) == 0 {
		return decimal.Zero, false
	}
	return b.bids[0].price, true
}

// BestAsk returns the lowest resting sell price, or false if the ask side
// is empty.
func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	if len(b.asks) == 0 {
		return decimal.Zero, false
	}
	return b.asks[0].price, true
}

// PeekBestBuy returns the order at the front of the best bid queue, the
// next buy order in time priority to be matched.
func (b *OrderBook) PeekBestBuy() *domain.Order {
	return peekFront(b.bids)
}

// PeekBestSell returns the order at the front of the best ask queue.
func (b *OrderBook) PeekBestSell() *domain.Order {
	return peekFront(b.asks)
}

func peekFront(levels []*level) *domain.Order {
	if len(levels) == 0 {
		return nil
	}
	e := levels[0].orders.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*domain.Order)
}

// AddOrder rests a LIMIT order on the appropriate side at its price,
// behind any existing orders at that price (time priority via insertion
// order). The caller must ensure o.Price is non-nil and o.Side is valid.
func (b *OrderBook) AddOrder(o *domain.Order) {
	var lvl *level
	switch o.Side {
	case domain.SideBuy:
		lvl, b.bids = findOrInsertLevel(b.bids, *o.Price, true)
	case domain.SideSell:
		lvl, b.asks = findOrInsertLevel(b.asks, *o.Price, false)
	default:
		return
	}
	elem := lvl.orders.PushBack(o)
	b.index[o.ID] = &location{side: o.Side, level: lvl, elem: elem}
}

// findOrInsertLevel locates the level for price in levels (sorted
// descending if desc, ascending otherwise), inserting a new one in place
// if none exists yet, and returns the updated slice.
func findOrInsertLevel(levels []*level, price decimal.Decimal, desc bool) (*level, []*level) {
	less := func(i int) bool {
		if desc {
			return levels[i].price.LessThanOrEqual(price)
		}
		return levels[i].price.GreaterThanOrEqual(price)
	}
	idx := sort.Search(len(levels), less)
	if idx < len(levels) && levels[idx].price.Equal(price) {
		return levels[idx], levels
	}
	lvl := newLevel(price)
	levels = append(levels, nil)
	copy(levels[idx+1:], levels[idx:])
	levels[idx] = lvl
	return lvl, levels
}

// RemoveOrder removes an order from the book by ID, returning it and
// whether it was found. Empty levels are pruned from the ladder.
func (b *OrderBook) RemoveOrder(orderID string) (*domain.Order, bool) {
	loc, ok := b.index[orderID]
	if !ok {
		return nil, false
	}
	o := loc.elem.Value.(*domain.Order)
	loc.level.orders.Remove(loc.elem)
	delete(b.index, orderID)

	if loc.level.orders.Len() == 0 {
		switch loc.side {
		case domain.SideBuy:
			b.bids = removeLevel(b.bids, loc.level)
		case domain.SideSell:
			b.asks = removeLevel(b.asks, loc.level)
		}
	}
	return o, true
}

func removeLevel(levels []*level, target *level) []*level {
	for i, l := range levels {
		if l == target {
			return append(levels[:i], levels[i+1:]...)
		}
	}
	return levels
}

// IsEmpty reports whether both ladders are empty.
func (b *OrderBook) IsEmpty() bool {
	return len(b.bids) == 0 && len(b.asks) == 0
}

// Level is one row of a book snapshot: an aggregate price point.
type Level struct {
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	OrderCount int
}

// Snapshot is a point-in-time, read-only view of both sides of the book.
type Snapshot struct {
	Symbol string
	Bids   []Level
	Asks   []Level
}

// Snapshot builds an aggregated view of the book, best price first on
// each side.
func (b *OrderBook) Snapshot() Snapshot {
	return Snapshot{
		Symbol: b.Symbol,
		Bids:   snapshotLevels(b.bids),
		Asks:   snapshotLevels(b.asks),
	}
}

func snapshotLevels(levels []*level) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		if l.orders.Len() == 0 {
			continue
		}
		out = append(out, Level{Price: l.price, Quantity: l.totalQuantity(), OrderCount: l.orders.Len()})
	}
	return out
}
