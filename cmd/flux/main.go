package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flux/internal/amqp"
	"flux/internal/backend"
	"flux/internal/config"
	"flux/internal/core"
	"flux/internal/format"
	applog "flux/internal/log"
	"flux/internal/store"
	"flux/internal/tracker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	logger.Info("Starting flux")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	dataBackend := result.Backend

	// Realtime bus is optional; a session without it still persists,
	// it just does not see other clients' edits live.
	var bus *amqp.Bus
	if cfg.AMQPURL != "" {
		bus, err = amqp.NewBus(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to connect realtime bus, continuing without live sync", "error", err)
			bus = nil
		} else {
			defer bus.Close()
			dataBackend = store.WithNotifications(dataBackend, bus)
			logger.Info("Realtime sync enabled", "exchange", cfg.AMQPExchange)
		}
	}

	tr := tracker.New(dataBackend, tracker.Options{
		Account:          cfg.AccountID,
		SettingsDebounce: cfg.SettingsDebounce,
		MonthDebounce:    cfg.MonthDebounce,
	})
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tr.Load(ctx); err != nil {
		logger.Error("Initial load failed", "error", err)
		os.Exit(1)
	}
	if err := tr.LastSyncError(); err != nil {
		logger.Warn("Running on defaults after load failure", "error", err)
	}

	if bus != nil {
		go func() {
			if err := bus.Consume(ctx, tr.ApplyRemote); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption stopped", "error", err)
			}
		}()
	}

	printSummary(tr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())
	cancel()

	// Give in-flight writes a moment to land; pending debounced writes
	// are dropped by Close, matching the edit-local-first contract.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
drain:
	for tr.Syncing() {
		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout with writes still in flight")
			break drain
		case <-time.After(50 * time.Millisecond):
		}
	}

	logger.Info("Stopped gracefully")
}

func printSummary(tr *tracker.Tracker) {
	s := tr.Settings()
	key := tr.SelectedMonth()
	money := func(v float64) string {
		return format.Money(v, s.Currency, s.CurrencyLocale)
	}

	fmt.Printf("%s (%s)\n", core.MonthLabel(key), tr.MonthStatus(key))
	fmt.Printf("  fixed costs:     %s\n", money(tr.FixedCosts(key)))
	fmt.Printf("  variable costs:  %s\n", money(tr.VariableCosts(key)))
	fmt.Printf("  electricity:     %s\n", money(tr.ElectricityCost(key)))
	fmt.Printf("  projected bill:  %s\n", money(tr.ProjectedBill(key)))
	fmt.Printf("  live balance:    %s\n", money(tr.LiveBalance(key)))
	fmt.Printf("  lifetime:        %s\n", money(tr.CumulativeLiveBalance()))

	trend := tr.TrendData(6)
	if len(trend) > 1 {
		fmt.Println("\nLast months:")
		for _, p := range trend {
			fmt.Printf("  %-4s bill %12s   balance %12s\n",
				p.ShortLabel, money(p.ProjectedBill), money(p.Balance))
		}
	}
}
