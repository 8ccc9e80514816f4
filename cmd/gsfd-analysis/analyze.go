package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gsfdstack/gsfd-analysis/internal/api"
	"github.com/gsfdstack/gsfd-analysis/internal/engine"
	"github.com/gsfdstack/gsfd-analysis/internal/export"
	"github.com/gsfdstack/gsfd-analysis/internal/metrics"
)

type analyzeOptions struct {
	outputPath string
	printJSON  string
	noFacets   bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Load every report, export the results table and the aggregates of each layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(root)
			if err != nil {
				return err
			}
			if opts.outputPath != "" {
				a.cfg.Output.Path = opts.outputPath
			}
			if opts.noFacets {
				a.cfg.Output.Facets = false
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runAnalyze(ctx, a, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.outputPath, "output-path", "", "Directory where to store the result of the analysis")
	cmd.Flags().StringVar(&opts.printJSON, "print-json", "", "Print the aggregate of the named layout as JSON to stdout")
	cmd.Flags().BoolVar(&opts.noFacets, "no-facets", false, "Skip the per-facet series files")
	return cmd
}

func runAnalyze(ctx context.Context, a *app, opts *analyzeOptions, stdout io.Writer) error {
	analysis, err := a.pipeline.Run(ctx, a.cfg.Reports.Path)
	if err != nil {
		a.logger.Error("analysis failed", slog.Any("error", err))
		return err
	}

	out := a.cfg.Output.Path
	resultsPath := filepath.Join(out, a.cfg.Output.ResultsFile)
	if err := export.WriteFile(resultsPath, func(w io.Writer) error {
		return export.WriteRecords(w, analysis.Records)
	}); err != nil {
		return fmt.Errorf("write %s: %w", resultsPath, err)
	}
	a.logger.Info("results written", slog.String("path", resultsPath), slog.Int("records", len(analysis.Records)))

	for _, agg := range analysis.Aggregates {
		if err := writeLayout(a, out, agg); err != nil {
			return err
		}
	}

	if opts.printJSON != "" {
		if err := printAggregateJSON(stdout, analysis, opts.printJSON); err != nil {
			return err
		}
	}

	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path, prometheus.DefaultGatherer); err != nil {
			a.logger.Warn("metrics textfile not written", slog.String("path", path), slog.Any("error", err))
		}
	}
	return nil
}

func writeLayout(a *app, out string, agg engine.LayoutAggregate) error {
	name := agg.Layout.Name()
	path := filepath.Join(out, "aggregate__"+name+".csv")
	if err := export.WriteFile(path, func(w io.Writer) error {
		return export.WriteAggregate(w, agg.Layout.GroupBy(), agg.Rows)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if !a.cfg.Output.Facets {
		return nil
	}
	sink := export.NewFacetWriter(filepath.Join(out, name), "")
	if err := engine.Render(sink, agg.Rows, agg.Layout); err != nil {
		return fmt.Errorf("layout %s: %w", name, err)
	}
	a.logger.Info("layout exported",
		slog.String("layout", name),
		slog.Int("rows", len(agg.Rows)),
		slog.Int("facets", len(sink.Written())))
	return nil
}

func printAggregateJSON(w io.Writer, analysis engine.Analysis, layout string) error {
	agg, ok := analysis.Aggregate(layout)
	if !ok {
		return fmt.Errorf("unknown layout %q", layout)
	}
	list, err := api.ToProtoAggregateRows(agg.Rows)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", layout, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
