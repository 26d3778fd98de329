// Package engine drives continuous matching for one incoming order at a
// time, under the symbol's writer lock supplied by internal/manager.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"apexmatch/internal/book"
	"apexmatch/internal/domain"
	"apexmatch/internal/infra"
	"apexmatch/internal/manager"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchingEngine pairs incoming orders against resting orders under
// price-time priority, emitting trades and settling cash as it goes.
type MatchingEngine struct {
	books   *manager.BookManager
	orders  domain.OrderStore
	trades  domain.TradeStore
	balance domain.BalancePort
	clock   domain.Clock
	log     *slog.Logger

	observer domain.TradeObserver // optional, may be nil

	openOrders atomic.Int64 // resting orders across every symbol this engine owns
}

// New builds a MatchingEngine over the given collaborators. log may be
// nil, in which case slog.Default() is used.
func New(books *manager.BookManager, orders domain.OrderStore, trades domain.TradeStore, balance domain.BalancePort, clock domain.Clock, log *slog.Logger) *MatchingEngine {
	if log == nil {
		log = slog.Default()
	}
	return &MatchingEngine{
		books:   books,
		orders:  orders,
		trades:  trades,
		balance: balance,
		clock:   clock,
		log:     log,
	}
}

// SetObserver registers a callback invoked once per emitted trade, still
// under the symbol's writer lock. It must not block for long.
func (e *MatchingEngine) SetObserver(o domain.TradeObserver) {
	e.observer = o
}

// ExecuteOrder validates o, then matches it against the resting book for
// o.Symbol, emitting trades, settling balances, and persisting every
// mutated order and trade along the way. It returns the trades produced,
// in the order they occurred.
func (e *MatchingEngine) ExecuteOrder(ctx context.Context, o *domain.Order) ([]*domain.Trade, error) {
	if err := validateNewOrder(o); err != nil {
		infra.GlobalMetrics.RecordOrderRejected()
		return nil, err
	}

	ob, lock := e.books.Get(o.Symbol)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	trades, err := e.match(ctx, ob, o)
	if err != nil {
		infra.GlobalMetrics.RecordError()
		e.log.Error("execute_order failed", "order_id", o.ID, "symbol", o.Symbol, "error", err)
		return nil, err
	}

	infra.GlobalMetrics.RecordOrderAccepted()
	infra.GlobalMetrics.RecordTrades(len(trades), time.Since(start).Nanoseconds())
	return trades, nil
}

func validateNewOrder(o *domain.Order) error {
	if o.Symbol == "" {
		return domain.NewValidationError("symbol", "must not be empty")
	}
	if o.Side != domain.SideBuy && o.Side != domain.SideSell {
		return domain.NewValidationError("side", "must be BUY or SELL")
	}
	if o.Kind != domain.KindLimit && o.Kind != domain.KindMarket {
		return domain.NewValidationError("kind", "must be LIMIT or MARKET")
	}
	if o.Quantity.Sign() <= 0 {
		return domain.NewValidationError("quantity", "must be strictly positive")
	}
	if o.Kind == domain.KindLimit {
		if o.Price == nil || o.Price.Sign() <= 0 {
			return domain.NewValidationError("price", "LIMIT orders require a positive price")
		}
	} else if o.Price != nil {
		return domain.NewValidationError("price", "MARKET orders must not carry a price")
	}
	return nil
}

// match runs the aggressor loop from spec §4.2 against ob, under the
// caller-held symbol lock.
func (e *MatchingEngine) match(ctx context.Context, ob *book.OrderBook, a *domain.Order) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for a.Remaining().Sign() > 0 {
		maker := opposingPeek(ob, a.Side)
		if maker == nil {
			break
		}
		if a.Kind == domain.KindLimit && priceCrosses(a, maker) {
			break
		}

		qty := decimal.Min(a.Remaining(), maker.Remaining())
		price := *maker.Price

		trade := &domain.Trade{
			ID:        uuid.NewString(),
			Price:     price,
			Quantity:  qty,
			Timestamp: e.clock.Now(),
		}
		if a.Side == domain.SideBuy {
			trade.BuyOrderID, trade.SellOrderID = a.ID, maker.ID
		} else {
			trade.BuyOrderID, trade.SellOrderID = maker.ID, a.ID
		}

		a.FilledQuantity = a.FilledQuantity.Add(qty)
		maker.FilledQuantity = maker.FilledQuantity.Add(qty)

		if maker.IsFullyFilled() {
			maker.Status = domain.StatusFilled
		} else {
			maker.Status = domain.StatusPartiallyFilled
		}

		notional := price.Mul(qty)

		var buyUserID, sellUserID string
		if a.Side == domain.SideBuy {
			buyUserID, sellUserID = a.UserID, maker.UserID
		} else {
			buyUserID, sellUserID = maker.UserID, a.UserID
		}

		if err := e.settle(ctx, trade, maker, buyUserID, sellUserID, notional); err != nil {
			return nil, err
		}

		if maker.IsFullyFilled() {
			ob.RemoveOrder(maker.ID)
			infra.GlobalMetrics.SetOpenOrders(e.openOrders.Add(-1))
		}

		trades = append(trades, trade)
		if e.observer != nil {
			e.observer.OnTrade(a.Symbol, trade)
		}
	}

	if a.Remaining().Sign() == 0 {
		a.Status = domain.StatusFilled
	} else if a.Kind == domain.KindLimit {
		if a.FilledQuantity.Sign() > 0 {
			a.Status = domain.StatusPartiallyFilled
		} else {
			a.Status = domain.StatusPending
		}
		ob.AddOrder(a)
		infra.GlobalMetrics.SetOpenOrders(e.openOrders.Add(1))
	} else if a.FilledQuantity.Sign() > 0 {
		a.Status = domain.StatusPartiallyFilled
	}
	// MARKET orders with zero fill stay PENDING per open question 1;
	// either way they never rest.

	if err := e.orders.Save(ctx, a); err != nil {
		return nil, domain.NewPersistenceError("save aggressor order", err)
	}

	return trades, nil
}

// settle persists the trade, the maker order, and both balance
// adjustments as one unit of work. If e.orders/e.trades/e.balance
// implement domain.Transactor, the whole step runs inside one
// transaction; otherwise it runs sequentially best-effort.
func (e *MatchingEngine) settle(ctx context.Context, trade *domain.Trade, maker *domain.Order, buyUserID, sellUserID string, notional decimal.Decimal) error {
	step := func(ctx context.Context) error {
		if err := e.trades.Save(ctx, trade); err != nil {
			return domain.NewPersistenceError("save trade", err)
		}
		if err := e.orders.Save(ctx, maker); err != nil {
			return domain.NewPersistenceError("save maker order", err)
		}
		if err := e.balance.Adjust(ctx, buyUserID, notional.Neg()); err != nil {
			return domain.NewPersistenceError("debit buyer", err)
		}
		if err := e.balance.Adjust(ctx, sellUserID, notional); err != nil {
			return domain.NewPersistenceError("credit seller", err)
		}
		return nil
	}

	if tx, ok := e.transactor(); ok {
		return tx.WithinTransaction(ctx, step)
	}
	return step(ctx)
}

// transactor looks for a single collaborator that can wrap a step in a
// transaction. The core does not require all three ports to share one
// transactional resource; if none does, matching falls back to
// sequential calls.
func (e *MatchingEngine) transactor() (domain.Transactor, bool) {
	if tx, ok := e.orders.(domain.Transactor); ok {
		return tx, true
	}
	if tx, ok := e.trades.(domain.Transactor); ok {
		return tx, true
	}
	if tx, ok := e.balance.(domain.Transactor); ok {
		return tx, true
	}
	return nil, false
}

func opposingPeek(ob *book.OrderBook, side domain.Side) *domain.Order {
	if side == domain.SideBuy {
		return ob.PeekBestSell()
	}
	return ob.PeekBestBuy()
}

// priceCrosses reports whether a LIMIT aggressor's price fails to cross
// the resting maker's price, per spec §4.2 step 2.
func priceCrosses(a, maker *domain.Order) bool {
	if a.Side == domain.SideBuy {
		return a.Price.LessThan(*maker.Price)
	}
	return a.Price.GreaterThan(*maker.Price)
}

// CancelOrder removes order id from its book if still open and marks it
// CANCELLED. It is a no-op if the order is already terminal.
func (e *MatchingEngine) CancelOrder(ctx context.Context, symbol, orderID, requestingUserID string) error {
	ob, lock := e.books.Get(symbol)
	lock.Lock()
	defer lock.Unlock()

	o, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		infra.GlobalMetrics.RecordOrderRejected()
		return domain.NewNotFoundError("order", orderID)
	}
	if o.UserID != requestingUserID {
		infra.GlobalMetrics.RecordOrderRejected()
		return &domain.AuthorizationError{UserID: requestingUserID, OrderID: orderID}
	}
	if o.IsTerminal() {
		return nil
	}

	if _, found := ob.RemoveOrder(orderID); found {
		infra.GlobalMetrics.SetOpenOrders(e.openOrders.Add(-1))
	} else if o.Kind == domain.KindLimit {
		// An open LIMIT order always rests, so one that is absent from the
		// in-memory book means lock discipline was broken. Open MARKET
		// orders never rest and are cancelled without a book removal.
		infra.GlobalMetrics.RecordError()
		return domain.NewConcurrencyError("open order missing from book: " + orderID)
	}

	o.Status = domain.StatusCancelled
	if err := e.orders.Save(ctx, o); err != nil {
		infra.GlobalMetrics.RecordError()
		return domain.NewPersistenceError("save cancelled order", err)
	}
	infra.GlobalMetrics.RecordOrderCanceled()
	return nil
}

// Snapshot returns a read-locked view of symbol's book.
func (e *MatchingEngine) Snapshot(symbol string) book.Snapshot {
	ob, lock := e.books.Get(symbol)
	lock.RLock()
	defer lock.RUnlock()
	return ob.Snapshot()
}
