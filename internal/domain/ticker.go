package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a per-symbol read-model derived from the trades the matching
// engine emits. It is a summary, not a broadcast mechanism: nothing
// subscribes to it and no push happens, so it does not implement
// market-data fan-out (explicitly out of scope for the core).
// High24h, Low24h and Volume24h accumulate over every trade applied since
// the ticker was created; nothing resets them after 24 hours.
type Ticker struct {
	Symbol     string
	LastPrice  decimal.Decimal
	OpenPrice  decimal.Decimal
	High24h    decimal.Decimal
	Low24h     decimal.Decimal
	Volume24h  decimal.Decimal
	UpdatedAt  time.Time
}

// ChangeRatePct returns the percentage move of LastPrice from OpenPrice.
// Returns zero if OpenPrice has not yet been set.
func (t *Ticker) ChangeRatePct() decimal.Decimal {
	if t.OpenPrice.IsZero() {
		return decimal.Zero
	}
	return t.LastPrice.Sub(t.OpenPrice).Div(t.OpenPrice).Mul(decimal.NewFromInt(100))
}

// ApplyTrade folds one executed trade into the ticker's running state.
func (t *Ticker) ApplyTrade(price, quantity decimal.Decimal, at time.Time) {
	if t.OpenPrice.IsZero() {
		t.OpenPrice = price
		t.High24h = price
		t.Low24h = price
	} else {
		if price.GreaterThan(t.High24h) {
			t.High24h = price
		}
		if price.LessThan(t.Low24h) {
			t.Low24h = price
		}
	}
	t.LastPrice = price
	t.Volume24h = t.Volume24h.Add(quantity)
	t.UpdatedAt = at
}
