// Package service implements the admission flow that sits in front of
// the matching core: request validation, balance pre-checks, and order
// persistence before the order ever reaches the engine.
package service

import (
	"context"
	"log/slog"
	"strings"

	"apexmatch/internal/domain"
	"apexmatch/internal/engine"
	"apexmatch/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the untrusted input to OrderPlacementService, one
// step removed from whatever transport (HTTP, in-process call) accepted
// it.
type PlaceOrderRequest struct {
	UserID   string
	Symbol   string
	Side     domain.Side
	Kind     domain.Kind
	Price    *decimal.Decimal
	Quantity decimal.Decimal
}

// OrderPlacementService runs admission pre-checks (spec §6) before
// handing a persisted PENDING order to the matching engine.
type OrderPlacementService struct {
	orders  domain.OrderStore
	engine  *engine.MatchingEngine
	balance domain.BalanceReader
	clock   domain.Clock
	log     *slog.Logger
}

// NewOrderPlacementService wires the admission layer to its
// collaborators. log may be nil.
func NewOrderPlacementService(orders domain.OrderStore, eng *engine.MatchingEngine, balance domain.BalanceReader, clock domain.Clock, log *slog.Logger) *OrderPlacementService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderPlacementService{orders: orders, engine: eng, balance: balance, clock: clock, log: log}
}

// PlaceOrder validates req, checks buyer solvency, persists the order as
// PENDING, then executes it against the book. It returns the persisted
// order (with its final status) and any trades produced.
func (s *OrderPlacementService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, []*domain.Trade, error) {
	if err := validateRequest(&req); err != nil {
		infra.GlobalMetrics.RecordOrderRejected()
		return nil, nil, err
	}

	if req.Side == domain.SideBuy {
		if err := s.checkBuyerFunds(ctx, req); err != nil {
			infra.GlobalMetrics.RecordOrderRejected()
			return nil, nil, err
		}
	}

	o := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Kind:      req.Kind,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Status:    domain.StatusPending,
		CreatedAt: s.clock.Now(),
	}

	if err := s.orders.Save(ctx, o); err != nil {
		infra.GlobalMetrics.RecordError()
		return nil, nil, domain.NewPersistenceError("save admitted order", err)
	}

	trades, err := s.engine.ExecuteOrder(ctx, o)
	if err != nil {
		s.log.Error("order placement failed during execution", "order_id", o.ID, "error", err)
		return nil, nil, err
	}
	return o, trades, nil
}

// CancelOrder delegates to the matching engine after normalizing the
// symbol the same way admission does.
func (s *OrderPlacementService) CancelOrder(ctx context.Context, symbol, orderID, userID string) error {
	return s.engine.CancelOrder(ctx, strings.ToUpper(symbol), orderID, userID)
}

func validateRequest(req *PlaceOrderRequest) error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		return domain.NewValidationError("symbol", "must not be empty")
	}
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		return domain.NewValidationError("side", "must be BUY or SELL")
	}
	if req.Kind != domain.KindLimit && req.Kind != domain.KindMarket {
		return domain.NewValidationError("kind", "must be LIMIT or MARKET")
	}
	if req.Quantity.Sign() <= 0 {
		return domain.NewValidationError("quantity", "must be strictly positive")
	}
	if req.Kind == domain.KindLimit {
		if req.Price == nil || req.Price.Sign() <= 0 {
			return domain.NewValidationError("price", "LIMIT orders require a positive price")
		}
	} else if req.Price != nil {
		return domain.NewValidationError("price", "MARKET orders must not carry a price")
	}
	return nil
}

// checkBuyerFunds implements the admission pre-check from spec §6: for
// LIMIT orders the notional is quantity*price; for MARKET orders it is a
// known-approximate stand-in of quantity alone (see spec §9 open
// question 2), mirroring the reference implementation's rough estimate.
func (s *OrderPlacementService) checkBuyerFunds(ctx context.Context, req PlaceOrderRequest) error {
	var required decimal.Decimal
	if req.Kind == domain.KindLimit {
		required = req.Quantity.Mul(*req.Price)
	} else {
		required = req.Quantity
	}

	available, err := s.balance.Balance(ctx, req.UserID)
	if err != nil {
		return domain.NewPersistenceError("read buyer balance", err)
	}
	if available.LessThan(required) {
		return &domain.InsufficientFundsError{UserID: req.UserID, Required: required, Available: available}
	}
	return nil
}
