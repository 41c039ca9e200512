package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator web form and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	source, closeSource, err := newSource(cfg.Empirical, log)
	if err != nil {
		return err
	}
	defer closeSource()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	handler := handlers.NewHandler(handlers.Options{
		Defaults:  defaultsFrom(cfg),
		Empirical: source,
		Logger:    log,
	})
	router := handlers.NewRouter(handler, handlers.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":             server.Addr,
			"default_bankroll": cfg.Calculator.DefaultBankroll,
			"cap_fraction":     cfg.Calculator.DefaultCapFraction,
			"min_stake":        cfg.Calculator.MinStake,
		}).Info("Stake calculator started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutting down gracefully")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("Stake calculator stopped")
	return nil
}
