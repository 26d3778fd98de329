// Command apexmatch bootstraps the matching engine and its storage,
// then blocks until asked to shut down. Everything reachable from the
// network (REST, WebSocket, auth) is a collaborator outside this
// binary's scope; this process only owns the core.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apexmatch/internal/app"
	"apexmatch/internal/infra"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the engine config file")
	flag.Parse()

	a, err := app.Bootstrap(*configPath)
	if err != nil {
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	a.Logger.Info("apexmatch ready", "symbols", a.Config.Engine.Symbols)

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("shutting down")
			snap := infra.GlobalMetrics.Snapshot()
			a.Logger.Info("final metrics", "orders_accepted", snap.OrdersAccepted, "trades_executed", snap.TradesExecuted)
			return
		case <-ticker.C:
			snap := infra.GlobalMetrics.Snapshot()
			a.Logger.Info("metrics tick", "orders_accepted", snap.OrdersAccepted, "trades_executed", snap.TradesExecuted, "open_orders", snap.OpenOrders)
		}
	}
}
