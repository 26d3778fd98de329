package domain

import "github.com/shopspring/decimal"

// PriceAlert watches a symbol's ticker and fires once the last price
// crosses a target. It is a thin convenience built on top of Ticker, not
// part of the matching core.
type PriceAlert struct {
	Symbol      string
	TargetPrice decimal.Decimal
	Direction   string // "UP" or "DOWN"
	active      bool
}

// NewPriceAlert creates an alert configuration. Direction is inferred from
// where target sits relative to current:
//   - UP: target > current (waiting for price to rise)
//   - DOWN: target < current (waiting for price to fall)
func NewPriceAlert(symbol string, target, current decimal.Decimal) *PriceAlert {
	direction := "UP"
	if target.LessThan(current) {
		direction = "DOWN"
	}
	return &PriceAlert{
		Symbol:      symbol,
		TargetPrice: target,
		Direction:   direction,
		active:      true,
	}
}

// IsActive returns whether the alert is still armed.
func (a *PriceAlert) IsActive() bool {
	return a.active
}

// SetActive arms or disarms the alert.
func (a *PriceAlert) SetActive(active bool) {
	a.active = active
}

// CheckCondition reports whether current crosses the alert's target given
// its direction.
func (a *PriceAlert) CheckCondition(current decimal.Decimal) bool {
	if !a.active {
		return false
	}
	switch a.Direction {
	case "UP":
		return current.GreaterThanOrEqual(a.TargetPrice)
	case "DOWN":
		return current.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}
