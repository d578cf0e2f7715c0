package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finlearn/papertrade/internal/advisor"
	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/ledger"
	"github.com/finlearn/papertrade/internal/logger"
	"github.com/finlearn/papertrade/internal/marketdata"
	"github.com/finlearn/papertrade/internal/storage"
	"github.com/finlearn/papertrade/internal/telegram"
	"github.com/finlearn/papertrade/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("starting papertrade", "port", cfg.Server.Port, "db", cfg.Database.Path)

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	quotes := marketdata.NewClient(cfg.MarketData, log)
	notifier := telegram.NewNotifier(cfg, log)
	svc := ledger.NewService(repo, quotes, notifier, cfg, log)
	adv := advisor.New(cfg, log)
	webServer := web.NewServer(svc, adv, repo, cfg, log)

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("📈 papertrade started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.NotifyStatus("🛑 papertrade stopped")
	log.Info("papertrade stopped")
}
