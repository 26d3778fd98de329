package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTicker_ApplyTradeSetsOpenOnFirstTrade(t *testing.T) {
	tk := &Ticker{Symbol: "BTC-USD"}
	tk.ApplyTrade(decimal.RequireFromString("100"), decimal.RequireFromString("2"), time.Now())

	if !tk.OpenPrice.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected open price 100, got %s", tk.OpenPrice)
	}
	if !tk.LastPrice.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected last price 100, got %s", tk.LastPrice)
	}
}

func TestTicker_ChangeRatePct(t *testing.T) {
	tk := &Ticker{OpenPrice: decimal.RequireFromString("100"), LastPrice: decimal.RequireFromString("110")}
	if !tk.ChangeRatePct().Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected 10%% change, got %s", tk.ChangeRatePct())
	}
}

func TestTicker_ChangeRatePctZeroOpen(t *testing.T) {
	tk := &Ticker{}
	if !tk.ChangeRatePct().IsZero() {
		t.Fatalf("expected zero change rate with no open price, got %s", tk.ChangeRatePct())
	}
}
