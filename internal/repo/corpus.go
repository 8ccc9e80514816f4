package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gsfdstack/gsfd-analysis/internal/metrics"
	"github.com/gsfdstack/gsfd-analysis/internal/models"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

// ReportSuffix marks files treated as run reports.
const ReportSuffix = ".json"

// Normalizer converts a decoded report into a Record.
type Normalizer interface {
	Normalize(group string, raw models.RawReport) (models.Record, error)
}

// ReportFile is a discovered report and its group label.
type ReportFile struct {
	Path  string
	Group string
}

// CorpusLoader walks a directory of run reports and normalizes each of them.
type CorpusLoader struct {
	logger     *slog.Logger
	normalizer Normalizer
	workers    int
}

// NewCorpusLoader constructs a loader. workers <= 0 uses GOMAXPROCS.
func NewCorpusLoader(logger *slog.Logger, normalizer Normalizer, workers int) *CorpusLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CorpusLoader{logger: logger, normalizer: normalizer, workers: workers}
}

// Discover returns every report below basePath in lexical walk order. The
// group of a report is its directory relative to basePath; "." for reports
// directly inside it.
func (l *CorpusLoader) Discover(basePath string) ([]ReportFile, error) {
	var files []ReportFile
	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ReportSuffix) {
			return nil
		}
		group, err := filepath.Rel(basePath, filepath.Dir(path))
		if err != nil {
			return err
		}
		files = append(files, ReportFile{Path: path, Group: filepath.ToSlash(group)})
		return nil
	})
	if err != nil {
		return nil, utils.NewAppError("discover", basePath, err)
	}
	return files, nil
}

// Load normalizes every report below basePath. Any unreadable or malformed
// report aborts the whole load: a partial corpus is not trusted for
// aggregate statistics. Records keep the discovery order.
func (l *CorpusLoader) Load(ctx context.Context, basePath string) ([]models.Record, error) {
	if l.normalizer == nil {
		return nil, fmt.Errorf("corpus loader: normalizer not configured")
	}
	files, err := l.Discover(basePath)
	if err != nil {
		return nil, err
	}
	l.logger.Info("discovered reports", slog.String("path", basePath), slog.Int("reports", len(files)))

	records := make([]models.Record, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			rec, err := l.loadOne(file)
			if err != nil {
				metrics.ObserveReport(time.Since(start), metrics.OutcomeError)
				return err
			}
			metrics.ObserveReport(time.Since(start), metrics.OutcomeSuccess)
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.logger.Error("corpus load aborted", slog.String("path", basePath), slog.Any("error", err))
		return nil, err
	}
	return records, nil
}

func (l *CorpusLoader) loadOne(file ReportFile) (models.Record, error) {
	raw, err := ReadReport(file.Path)
	if err != nil {
		return models.Record{}, err
	}
	rec, err := l.normalizer.Normalize(file.Group, raw)
	if err != nil {
		return models.Record{}, utils.NewAppError("load", file.Path, err)
	}
	return rec, nil
}

// ReadReport decodes one report file. Undecodable JSON is a malformed report.
func ReadReport(path string) (models.RawReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawReport{}, utils.NewAppError("read report", path, err)
	}
	var raw models.RawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.RawReport{}, utils.NewAppError("read report", path, fmt.Errorf("%w: %v", utils.ErrMalformedReport, err))
	}
	return raw, nil
}
