package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gsfdstack/gsfd-analysis/internal/api"
	"github.com/gsfdstack/gsfd-analysis/internal/engine"
	"github.com/gsfdstack/gsfd-analysis/internal/models"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

// AnalysisService implements the gRPC Analysis service over one loaded corpus.
type AnalysisService struct {
	logger     *slog.Logger
	aggregator *engine.Aggregator

	mu       sync.RWMutex
	analysis engine.Analysis
	layouts  map[string]*engine.Layout
}

var _ api.AnalysisServer = (*AnalysisService)(nil)

// NewAnalysisService constructs the query facade. Layouts not precomputed in
// analysis are aggregated on demand.
func NewAnalysisService(logger *slog.Logger, aggregator *engine.Aggregator, analysis engine.Analysis, layouts []*engine.Layout) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if aggregator == nil {
		aggregator = engine.NewAggregator(logger)
	}
	byName := make(map[string]*engine.Layout, len(layouts))
	for _, l := range layouts {
		byName[l.Name()] = l
	}
	return &AnalysisService{
		logger:     logger,
		aggregator: aggregator,
		analysis:   analysis,
		layouts:    byName,
	}
}

// Replace swaps in a freshly computed analysis.
func (s *AnalysisService) Replace(analysis engine.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = analysis
}

// ListRecords returns the loaded Records, optionally restricted to one group.
func (s *AnalysisService) ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	filter, err := api.FromProtoListRecordsRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.RLock()
	records := s.analysis.Records
	s.mu.RUnlock()

	selected := records
	if filter.Group != "" {
		selected = make([]models.Record, 0)
		for _, rec := range records {
			if rec.Group == filter.Group {
				selected = append(selected, rec)
			}
		}
	}

	resp, err := api.ToProtoRecords(selected)
	if err != nil {
		s.logger.Error("convert records failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode records")
	}
	return resp, nil
}

// Aggregate returns the aggregated table of the requested layout.
func (s *AnalysisService) Aggregate(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	name, err := api.FromProtoAggregateRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.RLock()
	analysis := s.analysis
	layout, ok := s.layouts[name]
	s.mu.RUnlock()
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown layout %q", name)
	}

	var rows []models.AggregateRow
	if agg, found := analysis.Aggregate(name); found {
		rows = agg.Rows
	} else {
		rows, err = s.aggregator.Aggregate(analysis.Records, layout)
		if err != nil {
			if errors.Is(err, utils.ErrUnclassifiedField) {
				return nil, status.Error(codes.FailedPrecondition, err.Error())
			}
			s.logger.Error("aggregate failed", slog.String("layout", name), slog.Any("error", err))
			return nil, status.Error(codes.Internal, "aggregation failed")
		}
	}

	resp, err := api.ToProtoAggregateRows(rows)
	if err != nil {
		s.logger.Error("convert aggregate failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode aggregate")
	}
	return resp, nil
}
