package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gsfdstack/gsfd-analysis/internal/config"
	"github.com/gsfdstack/gsfd-analysis/internal/engine"
	"github.com/gsfdstack/gsfd-analysis/internal/metrics"
	"github.com/gsfdstack/gsfd-analysis/internal/repo"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	reportsPath string
	workers     int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gsfd-analysis",
		Short:         "Classify and aggregate gossip failure detector simulation reports",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.reportsPath, "reports-path", "", "Base path where to find the reports")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Reports normalized in parallel (0 = GOMAXPROCS)")

	root.AddCommand(newAnalyzeCmd(opts), newServeCmd(opts))
	return root
}

// app bundles everything both commands need.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	layouts  []*engine.Layout
	pipeline *engine.Pipeline
}

func setup(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", opts.configPath), slog.Any("error", err))
		return nil, err
	}
	if opts.reportsPath != "" {
		cfg.Reports.Path = opts.reportsPath
	}
	if opts.workers > 0 {
		cfg.Reports.Workers = opts.workers
	}
	if cfg.Reports.Path == "" {
		return nil, fmt.Errorf("reports path is required (--reports-path or reports.path)")
	}

	logger := utils.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.JSON)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		return nil, err
	}

	layouts, err := engine.BuildLayouts(cfg.Layouts)
	if err != nil {
		logger.Error("invalid layout configuration", slog.Any("error", err))
		return nil, err
	}

	normalizer := engine.NewNormalizer(logger)
	loader := repo.NewCorpusLoader(logger, normalizer, cfg.Reports.Workers)
	pipeline := engine.NewPipeline(logger, loader, engine.NewAggregator(logger), layouts)

	return &app{
		cfg:      cfg,
		logger:   logger,
		layouts:  layouts,
		pipeline: pipeline,
	}, nil
}
