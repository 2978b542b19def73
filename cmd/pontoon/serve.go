// Copyright 2026 Pontoon Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pontoon-io/pontoon/core"
	"github.com/pontoon-io/pontoon/event"
	"github.com/pontoon-io/pontoon/internal/config"
	"github.com/pontoon-io/pontoon/ledger"
	"github.com/pontoon-io/pontoon/mempool"
)

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	oracleTtl, err := time.ParseDuration(cfg.OracleCacheTtl)
	if err != nil {
		slog.Error("invalid oracle cache TTL: " + err.Error())
		os.Exit(1)
	}
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		slog.Error("invalid shutdown timeout: " + err.Error())
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	eventBus := event.NewEventBus(promRegistry, logger)
	oracle := ledger.NewCachingOracle(core.NewMainChainState(), oracleTtl)
	defer oracle.Stop()

	l, err := ledger.New(ledger.LedgerConfig{
		Logger:       logger,
		DataDir:      cfg.DataDir,
		EventBus:     eventBus,
		PromRegistry: promRegistry,
		Oracle:       oracle,
	})
	if err != nil {
		slog.Error("failed to open ledger: " + err.Error())
		os.Exit(1)
	}

	pool := mempool.NewMempool(mempool.MempoolConfig{
		Logger:          logger,
		EventBus:        eventBus,
		PromRegistry:    promRegistry,
		Validator:       l,
		MempoolCapacity: cfg.MempoolCapacity,
	})
	defer pool.Stop()

	// Metrics listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle(
		"/metrics",
		promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	)
	metricsServer := &http.Server{
		Addr: fmt.Sprintf(
			"%s:%d",
			cfg.MetricsBindAddr,
			cfg.MetricsPort,
		),
		Handler:           metricsMux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		logger.Info(
			"listening for prometheus metrics connections on "+metricsServer.Addr,
			"component", programName,
		)
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics listener failed: " + err.Error())
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalCh
	logger.Info(
		"signal received, shutting down",
		"component", programName,
		"signal", sig.String(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Error(
			"metrics listener shutdown failed",
			"component", programName,
			"error", err,
		)
	}
	eventBus.Stop()
	if err := l.Close(); err != nil {
		slog.Error("ledger close failed: " + err.Error())
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the side ledger",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
}
