package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is a point-in-time match between a buy order and a sell order,
// executed at the resting (maker) order's price.
type Trade struct {
	ID          string
	BuyOrderID  string
	SellOrderID string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Timestamp   time.Time
}
