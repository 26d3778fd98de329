package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStore persists order state. Save upserts by ID; the core calls it
// after every status or filled-quantity change.
type OrderStore interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
}

// TradeStore appends trade records. The core calls Save once per emitted
// trade.
type TradeStore interface {
	Save(ctx context.Context, t *Trade) error
}

// BalancePort adjusts a user's cash balance by a signed delta, atomically
// per call. The core calls it twice per trade: once to debit the buyer,
// once to credit the seller.
type BalancePort interface {
	Adjust(ctx context.Context, userID string, delta decimal.Decimal) error
}

// BalanceReader exposes the current balance for admission pre-checks
// performed outside the core (see OrderPlacementService).
type BalanceReader interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// BalanceStore is the combination of BalancePort and BalanceReader that a
// concrete balance ledger implements.
type BalanceStore interface {
	BalancePort
	BalanceReader
}

// Clock supplies monotonic timestamps used to resolve time priority and to
// stamp trades.
type Clock interface {
	Now() time.Time
}

// TradeObserver is notified after a trade has been persisted and its
// balances settled. Implementations must not block the matching loop for
// long; the engine calls it synchronously, still holding the symbol lock.
type TradeObserver interface {
	OnTrade(symbol string, trade *Trade)
}

// Transactor groups a set of store operations into one atomic unit of
// work when the underlying collaborator supports it (e.g. a SQL-backed
// storage layer wrapping fn in a DB transaction). Collaborators that
// cannot offer this (in-memory test doubles) simply do not implement it;
// the engine falls back to sequential, best-effort calls.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
