package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// CorpusLoader produces the Records of every run below a base path.
type CorpusLoader interface {
	Load(ctx context.Context, basePath string) ([]models.Record, error)
}

// LayoutAggregate is the aggregated table of one layout.
type LayoutAggregate struct {
	Layout *Layout
	Rows   []models.AggregateRow
}

// Analysis is the full result of one pipeline run.
type Analysis struct {
	BasePath   string
	Records    []models.Record
	Aggregates []LayoutAggregate
	FinishedAt time.Time
}

// Aggregate returns the table of the named layout.
func (a Analysis) Aggregate(name string) (LayoutAggregate, bool) {
	for _, agg := range a.Aggregates {
		if agg.Layout.Name() == name {
			return agg, true
		}
	}
	return LayoutAggregate{}, false
}

// Pipeline loads a corpus and aggregates it under each configured layout.
type Pipeline struct {
	logger     *slog.Logger
	loader     CorpusLoader
	aggregator *Aggregator
	layouts    []*Layout
}

// NewPipeline constructs a new analysis pipeline.
func NewPipeline(logger *slog.Logger, loader CorpusLoader, aggregator *Aggregator, layouts []*Layout) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if aggregator == nil {
		aggregator = NewAggregator(logger)
	}
	return &Pipeline{
		logger:     logger,
		loader:     loader,
		aggregator: aggregator,
		layouts:    layouts,
	}
}

// Run recomputes everything from the raw reports below basePath.
func (p *Pipeline) Run(ctx context.Context, basePath string) (Analysis, error) {
	if p.loader == nil {
		return Analysis{}, fmt.Errorf("corpus loader not configured")
	}

	start := time.Now()
	records, err := p.loader.Load(ctx, basePath)
	if err != nil {
		return Analysis{}, fmt.Errorf("load corpus: %w", err)
	}

	analysis := Analysis{BasePath: basePath, Records: records}
	for _, layout := range p.layouts {
		rows, err := p.aggregator.Aggregate(records, layout)
		if err != nil {
			return Analysis{}, fmt.Errorf("aggregate %s: %w", layout.Name(), err)
		}
		analysis.Aggregates = append(analysis.Aggregates, LayoutAggregate{Layout: layout, Rows: rows})
	}
	analysis.FinishedAt = time.Now().UTC()

	p.logger.Info("analysis complete",
		slog.String("path", basePath),
		slog.Int("records", len(records)),
		slog.Int("layouts", len(p.layouts)),
		slog.Duration("elapsed", time.Since(start)))
	return analysis, nil
}

// Layouts returns the configured layouts.
func (p *Pipeline) Layouts() []*Layout {
	return append([]*Layout(nil), p.layouts...)
}
