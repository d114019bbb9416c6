package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/internal/httpapi"
	"github.com/papersim/papersim/internal/ledger"
	"github.com/papersim/papersim/internal/pricefeed"
	"github.com/papersim/papersim/pkg/config"
	"github.com/papersim/papersim/pkg/logger"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	configPath := flag.String("config", getenv("PAPERSIM_CONFIG", ""), "YAML config file path (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}

	store, err := ledger.Open(ledger.Config{
		DBPath:          cfg.Store.DBPath,
		StartingBalance: decimal.NewFromFloat(cfg.Store.StartingBalance),
		Currency:        cfg.Store.Currency,
		Fee:             decimal.NewFromFloat(cfg.Store.Fee),
	})
	if err != nil {
		log.Fatalf("open ledger failed: %v", err)
	}
	defer store.Close()

	prices := pricefeed.NewClient(pricefeed.Config{
		BaseURL:        cfg.Prices.BaseURL,
		Timeout:        cfg.Prices.Timeout.Std(),
		PriceCacheTTL:  cfg.Prices.PriceCacheTTL.Std(),
		MarketCacheTTL: cfg.Prices.MarketCacheTTL.Std(),
	})

	srv := httpapi.New(httpapi.Config{
		OrderCheckInterval: cfg.Orders.CheckInterval.Std(),
		PriceFetchTimeout:  cfg.Prices.Timeout.Std(),
	}, store, prices)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("papersim listening on %s", cfg.Server.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)

	fmt.Println("server stopped")
}
