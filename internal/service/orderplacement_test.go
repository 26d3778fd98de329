package service

import (
	"context"
	"testing"
	"time"

	"apexmatch/internal/domain"
	"apexmatch/internal/engine"
	"apexmatch/internal/manager"

	"github.com/shopspring/decimal"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestPlacementService(t *testing.T) (*OrderPlacementService, *domain.BalanceBook) {
	t.Helper()
	orders := &memOrderStore{orders: make(map[string]*domain.Order)}
	trades := &memTradeStore{}
	balances := domain.NewBalanceBook()
	clock := fixedClock{t: time.Unix(0, 0)}

	eng := engine.New(manager.New(), orders, trades, balances, clock, nil)
	svc := NewOrderPlacementService(orders, eng, balances, clock, nil)
	return svc, balances
}

type memOrderStore struct {
	orders map[string]*domain.Order
}

func (s *memOrderStore) Save(_ context.Context, o *domain.Order) error {
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *memOrderStore) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.NewNotFoundError("order", id)
	}
	cp := *o
	return &cp, nil
}

type memTradeStore struct {
	trades []*domain.Trade
}

func (s *memTradeStore) Save(_ context.Context, t *domain.Trade) error {
	s.trades = append(s.trades, t)
	return nil
}

func TestPlaceOrder_RejectsInsufficientFunds(t *testing.T) {
	svc, _ := newTestPlacementService(t)
	price := decimal.RequireFromString("100")

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "broke",
		Symbol:   "btc-usd",
		Side:     domain.SideBuy,
		Kind:     domain.KindLimit,
		Price:    &price,
		Quantity: decimal.RequireFromString("10"),
	})
	if !domain.IsInsufficientFunds(err) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
}

func TestPlaceOrder_AcceptsWithSufficientFunds(t *testing.T) {
	svc, balances := newTestPlacementService(t)
	balances.Adjust(context.Background(), "rich", decimal.RequireFromString("10000"))
	price := decimal.RequireFromString("100")

	order, trades, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "rich",
		Symbol:   "btc-usd",
		Side:     domain.SideBuy,
		Kind:     domain.KindLimit,
		Price:    &price,
		Quantity: decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("expected order to be admitted, got %v", err)
	}
	if order.Symbol != "BTC-USD" {
		t.Fatalf("expected symbol normalized to uppercase, got %s", order.Symbol)
	}
	if len(trades) != 0 {
		t.Fatalf("expected no trades against an empty book, got %+v", trades)
	}
	if order.Status != domain.StatusPending {
		t.Fatalf("expected resting PENDING order, got %s", order.Status)
	}
}

func TestPlaceOrder_MarketBuyUsesQuantityAsFundsProxy(t *testing.T) {
	svc, balances := newTestPlacementService(t)
	balances.Adjust(context.Background(), "u1", decimal.RequireFromString("4"))

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "u1",
		Symbol:   "BTC-USD",
		Side:     domain.SideBuy,
		Kind:     domain.KindMarket,
		Quantity: decimal.RequireFromString("5"),
	})
	if !domain.IsInsufficientFunds(err) {
		t.Fatalf("expected the MARKET buy funds proxy (quantity alone) to reject, got %v", err)
	}
}

func TestPlaceOrder_SellSideSkipsFundsCheck(t *testing.T) {
	svc, _ := newTestPlacementService(t)
	price := decimal.RequireFromString("100")

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "no-balance-needed",
		Symbol:   "BTC-USD",
		Side:     domain.SideSell,
		Kind:     domain.KindLimit,
		Price:    &price,
		Quantity: decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("expected SELL orders to skip the funds check, got %v", err)
	}
}

func TestPlaceOrder_ValidationRejectsMissingPrice(t *testing.T) {
	svc, _ := newTestPlacementService(t)

	_, _, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "u1",
		Symbol:   "BTC-USD",
		Side:     domain.SideBuy,
		Kind:     domain.KindLimit,
		Quantity: decimal.RequireFromString("10"),
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCancelOrder_NormalizesSymbolCase(t *testing.T) {
	svc, balances := newTestPlacementService(t)
	balances.Adjust(context.Background(), "u1", decimal.RequireFromString("10000"))
	price := decimal.RequireFromString("100")

	order, _, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		UserID:   "u1",
		Symbol:   "btc-usd",
		Side:     domain.SideBuy,
		Kind:     domain.KindLimit,
		Price:    &price,
		Quantity: decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if err := svc.CancelOrder(context.Background(), "btc-usd", order.ID, "u1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
}
