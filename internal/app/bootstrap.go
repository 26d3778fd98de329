// Package app wires the matching engine, its storage adapter, and the
// admission service together into one runnable process.
package app

import (
	"fmt"
	"log/slog"

	"apexmatch/internal/domain"
	"apexmatch/internal/engine"
	"apexmatch/internal/infra"
	"apexmatch/internal/infra/storage"
	"apexmatch/internal/manager"
	"apexmatch/internal/service"
)

// App bundles every long-lived component the process needs, assembled
// once at startup and passed down instead of relying on globals.
type App struct {
	Config    *infra.Config
	Logger    *slog.Logger
	Storage   *storage.Storage
	Books     *manager.BookManager
	Engine    *engine.MatchingEngine
	Placement *service.OrderPlacementService
	Tickers   *service.TickerService
}

// Bootstrap loads configuration from configPath and wires the full
// dependency graph: SQLite-backed order/trade/balance storage, the
// per-symbol book manager, the matching engine, the ticker read-model,
// and the admission service in front of it.
func Bootstrap(configPath string) (*App, error) {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := infra.NewLogger(cfg)
	log.Info("starting apexmatch", "version", cfg.App.Version, "symbols", cfg.Engine.Symbols)

	store, err := storage.NewStorage(cfg.Engine.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	books := manager.New()
	clock := infra.SystemClock{}

	var balancePort domain.BalancePort = store.Balances
	var balanceReader domain.BalanceReader = store.Balances

	eng := engine.New(books, store.Orders, store.Trades, balancePort, clock, log)

	tickers := service.NewTickerService(log)
	eng.SetObserver(tickers)

	placement := service.NewOrderPlacementService(store.Orders, eng, balanceReader, clock, log)

	for _, symbol := range cfg.Engine.Symbols {
		books.Get(symbol) // pre-warm so Symbols/Snapshots list every configured symbol from startup
	}

	return &App{
		Config:    cfg,
		Logger:    log,
		Storage:   store,
		Books:     books,
		Engine:    eng,
		Placement: placement,
		Tickers:   tickers,
	}, nil
}
