// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/amm"
	"github.com/luxfi/lpx/pkg/api"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/ledger"
	"github.com/luxfi/lpx/pkg/log"
	"github.com/luxfi/lpx/pkg/metric"
	"github.com/luxfi/lpx/pkg/storage"
	"github.com/luxfi/lpx/pkg/token"
	"github.com/luxfi/lpx/pkg/trade"
)

var (
	// Node configuration flags
	dataDir   = flag.String("data-dir", "/tmp/lpxd", "Data directory")
	dbType    = flag.String("db", "badger", "Database backend: badger, memory")
	port      = flag.Int("port", 8080, "API port")
	adminPort = flag.Int("admin-port", 9090, "Admin/metrics port")
	env       = flag.String("env", "development", "Environment (development/production)")
	logLevel  = flag.String("log-level", "info", "Log level")

	// Platform fee bootstrap
	feeAddress = flag.String("fee-address", "", "Seed platform fee address (optional)")
	feeAmount  = flag.String("fee-amount", "0.01", "Seed platform fee rate in [0,1]")
	feeAdmin   = flag.String("fee-admin", "", "Seed fee configuration authority")

	// Version info
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	flag.Parse()

	fmt.Printf("LPX Daemon (lpxd) %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	store, err := storage.New(*dbType, *dataDir)
	if err != nil {
		fmt.Printf("Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	metrics, err := metric.NewMetrics()
	if err != nil {
		fmt.Printf("Failed to create metrics: %v\n", err)
		os.Exit(1)
	}

	registry := token.NewRegistry()
	engine := ledger.NewEngine(registry)
	pools := amm.NewMemoryPools()
	fees := fee.NewService(store)

	trades := trade.NewService(trade.Config{
		Store:    store,
		Ledger:   engine,
		Pools:    pools,
		Decimals: registry,
		Fees:     fees,
		Metrics:  metrics,
		Logger:   logger,
	})

	if err := seedFeeConfig(store, fees); err != nil {
		fmt.Printf("Failed to seed fee configuration: %v\n", err)
		os.Exit(1)
	}

	server := api.NewServer(trades, fees, metrics, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: server.Router(*env == "production"),
	}

	adminRouter := mux.NewRouter()
	adminRouter.Handle("/metrics", promhttp.HandlerFor(metrics.GetGatherer(), promhttp.HandlerOpts{}))
	adminRouter.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	adminSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *adminPort),
		Handler: adminRouter,
	}

	go func() {
		logger.Infof("API listening on :%d", *port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(fmt.Sprintf("API server failed: %v", err))
		}
	}()
	go func() {
		logger.Infof("Admin listening on :%d", *adminPort)
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(fmt.Sprintf("Admin server failed: %v", err))
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = adminSrv.Shutdown(ctx)
}

// seedFeeConfig installs the platform fee configuration on first boot when
// the operator passed the fee flags. An existing configuration is left
// untouched; it can only be mutated through the authorized API.
func seedFeeConfig(store *storage.Store, fees *fee.Service) error {
	if *feeAddress == "" {
		return nil
	}
	exists, err := store.Has(fee.ConfigKey())
	if err != nil || exists {
		return err
	}
	rate, err := decimal.NewFromString(*feeAmount)
	if err != nil {
		return fmt.Errorf("invalid fee-amount: %w", err)
	}
	admin := *feeAdmin
	if admin == "" {
		admin = *feeAddress
	}
	return fees.Set(context.Background(), fee.Config{
		FeeAddress:  *feeAddress,
		FeeAmount:   rate,
		Authorities: []string{admin},
	})
}
