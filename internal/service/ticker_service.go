package service

import (
	"log/slog"
	"sort"
	"sync"

	"apexmatch/internal/domain"
)

// TickerService maintains a per-symbol Ticker read-model, updated as
// trades are emitted. It implements domain.TradeObserver so a
// MatchingEngine can feed it directly. It also arms and checks
// PriceAlerts registered against a symbol's ticker.
type TickerService struct {
	mu      sync.RWMutex
	tickers map[string]*domain.Ticker
	alerts  map[string][]*domain.PriceAlert
	log     *slog.Logger
}

// NewTickerService creates an empty ticker service. log may be nil.
func NewTickerService(log *slog.Logger) *TickerService {
	if log == nil {
		log = slog.Default()
	}
	return &TickerService{
		tickers: make(map[string]*domain.Ticker),
		alerts:  make(map[string][]*domain.PriceAlert),
		log:     log,
	}
}

// RegisterAlert arms alert against symbol's future ticker updates.
func (s *TickerService) RegisterAlert(alert *domain.PriceAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.Symbol] = append(s.alerts[alert.Symbol], alert)
}

// ApplyTrade folds a trade for symbol into that symbol's ticker,
// creating it on first use, then checks every alert armed on symbol
// against the updated last price.
func (s *TickerService) ApplyTrade(symbol string, trade *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickers[symbol]
	if !ok {
		t = &domain.Ticker{Symbol: symbol}
		s.tickers[symbol] = t
	}
	t.ApplyTrade(trade.Price, trade.Quantity, trade.Timestamp)

	for _, alert := range s.alerts[symbol] {
		if !alert.IsActive() || !alert.CheckCondition(t.LastPrice) {
			continue
		}
		alert.SetActive(false)
		s.log.Info("price alert fired", "symbol", symbol, "direction", alert.Direction, "target_price", alert.TargetPrice, "last_price", t.LastPrice)
	}
}

// Get returns a copy of symbol's ticker and whether it exists.
func (s *TickerService) Get(symbol string) (domain.Ticker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickers[symbol]
	if !ok {
		return domain.Ticker{}, false
	}
	return *t, true
}

// All returns a snapshot of every known ticker, sorted by symbol.
func (s *TickerService) All() []domain.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ticker, 0, len(s.tickers))
	for _, t := range s.tickers {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// OnTrade implements domain.TradeObserver so a TickerService can be
// registered on a MatchingEngine directly.
func (s *TickerService) OnTrade(symbol string, trade *domain.Trade) {
	s.ApplyTrade(symbol, trade)
}
