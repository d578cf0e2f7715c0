// liquidate sells every holding of one user at market, through the ledger
// engine so cash, holdings and the transaction log stay consistent.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/ledger"
	"github.com/finlearn/papertrade/internal/logger"
	"github.com/finlearn/papertrade/internal/marketdata"
	"github.com/finlearn/papertrade/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	userID := flag.String("user", "", "user whose portfolio to liquidate")
	dryRun := flag.Bool("dry-run", false, "show positions without selling")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: liquidate -user <id> [-dry-run]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	quotes := marketdata.NewClient(cfg.MarketData, log)
	svc := ledger.NewService(repo, quotes, nil, cfg, log)

	ctx := context.Background()
	positions, err := svc.GetPositions(ctx, *userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get positions error: %v\n", err)
		os.Exit(1)
	}

	if len(positions) == 0 {
		fmt.Println("No holdings.")
		return
	}

	fmt.Printf("Found %d holding(s):\n\n", len(positions))
	for _, p := range positions {
		fmt.Printf("  %s: %d qty, avg %s, current %s, P&L %s\n",
			p.Symbol, p.Quantity, p.AveragePrice.StringFixed(2),
			p.CurrentPrice.StringFixed(2), p.PnL.StringFixed(2))
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("Dry run — no orders placed.")
		return
	}

	var sold, failed int
	for _, p := range positions {
		trade, err := svc.ExecuteTrade(ctx, *userID, ledger.Order{
			Symbol:         p.Symbol,
			Side:           storage.SideSell,
			Kind:           storage.KindMarket,
			Quantity:       p.Quantity,
			IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "  [FAIL] %s: %v\n", p.Symbol, err)
			failed++
			continue
		}

		fmt.Printf("  [OK]   %s: sold %d @ %s (fee %s)\n",
			p.Symbol, trade.Quantity, trade.ExecutedPrice.StringFixed(2), trade.Fee.StringFixed(2))
		sold++
	}

	fmt.Printf("\nDone: %d sold, %d failed.\n", sold, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
