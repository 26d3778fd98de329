package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Kind distinguishes resting LIMIT orders from immediate-or-drop MARKET orders.
type Kind string

const (
	KindLimit  Kind = "LIMIT"
	KindMarket Kind = "MARKET"
)

// Status is the lifecycle state of an order. Transitions:
// PENDING -> PARTIALLY_FILLED -> FILLED, with CANCELLED reachable from
// PENDING or PARTIALLY_FILLED only. FILLED and CANCELLED are terminal.
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCancelled       Status = "CANCELLED"
)

// Order is a trading intent, either resting in a book or already terminal.
type Order struct {
	ID             string
	UserID         string
	Symbol         string
	Side           Side
	Kind           Kind
	Price          *decimal.Decimal // nil for MARKET orders
	Quantity       decimal.Decimal
	FilledQuantity decimal.Decimal
	Status         Status
	CreatedAt      time.Time
}

// Remaining returns quantity minus filled quantity. Never negative for a
// well-formed order.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// IsFullyFilled reports whether remaining quantity has reached zero.
func (o *Order) IsFullyFilled() bool {
	return o.Remaining().Sign() <= 0
}

// IsOpen reports whether the order can still rest in a book or be cancelled.
func (o *Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusPartiallyFilled
}

// IsTerminal reports whether the order has reached FILLED or CANCELLED.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled
}
