package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/gsfdstack/gsfd-analysis/internal/api"
	"github.com/gsfdstack/gsfd-analysis/internal/engine"
	"github.com/gsfdstack/gsfd-analysis/internal/services"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the reports once and answer record and aggregate queries over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(root)
			if err != nil {
				return err
			}
			if address != "" {
				a.cfg.Server.Address = address
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "gRPC listen address (overrides server.address)")
	return cmd
}

func runServe(parent context.Context, a *app) error {
	logger := a.logger

	analysis, err := a.pipeline.Run(parent, a.cfg.Reports.Path)
	if err != nil {
		logger.Error("initial analysis failed", slog.Any("error", err))
		return err
	}
	service := services.NewAnalysisService(logger, engine.NewAggregator(logger), analysis, a.layouts)

	server, err := api.NewServer(a.cfg.Server, service)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		return err
	}
	logger.Info("starting gsfd-analysis query server", slog.String("address", server.Address()))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-reload:
				logger.Info("reloading reports", slog.String("path", a.cfg.Reports.Path))
				err := server.Reload(ctx, func(ctx context.Context) error {
					fresh, err := a.pipeline.Run(ctx, a.cfg.Reports.Path)
					if err != nil {
						return err
					}
					service.Replace(fresh)
					return nil
				})
				if err != nil {
					logger.Error("reload failed, keeping previous analysis", slog.Any("error", err))
				}
			}
		}
	}()

	var metricsServer *http.Server
	if a.cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         a.cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", a.cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("gsfd-analysis stopped")
	return nil
}
