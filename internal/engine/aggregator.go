package engine

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/gsfdstack/gsfd-analysis/internal/metrics"
	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// Aggregator reduces Records sharing the same group-by values of a layout.
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

type group struct {
	values  []any
	members []models.Record
}

// Aggregate validates layout, then returns one row per distinct combination
// of its group-by values, sorted by those values. The input order of records
// does not affect the result.
func (a *Aggregator) Aggregate(records []models.Record, layout *Layout) ([]models.AggregateRow, error) {
	if layout == nil {
		return nil, fmt.Errorf("aggregate: layout is nil")
	}
	if err := layout.Validate(); err != nil {
		a.logger.Error("refusing to aggregate", slog.String("layout", layout.Name()), slog.Any("error", err))
		return nil, err
	}

	dims := layout.GroupBy()
	groups := make(map[string]*group)
	order := make([]string, 0)
	for _, rec := range records {
		values := make([]any, len(dims))
		for i, d := range dims {
			values[i] = rec.Value(d)
		}
		key := groupKey(values)
		g, ok := groups[key]
		if !ok {
			g = &group{values: values}
			groups[key] = g
			order = append(order, key)
		}
		g.members = append(g.members, rec)
	}

	rows := make([]models.AggregateRow, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		rows = append(rows, reduce(dims, g))
	}
	slices.SortStableFunc(rows, func(x, y models.AggregateRow) int {
		return compareRows(x.Values, y.Values)
	})

	metrics.SetAggregateRows(layout.Name(), len(rows))
	a.logger.Debug("aggregated records",
		slog.String("layout", layout.Name()),
		slog.Int("records", len(records)),
		slog.Int("rows", len(rows)))
	return rows, nil
}

func reduce(dims []models.Field, g *group) models.AggregateRow {
	row := models.AggregateRow{
		Dims:    append([]models.Field(nil), dims...),
		Values:  g.values,
		Members: len(g.members),
		Correct: true,
	}
	detect := make([]models.Optional, 0, len(g.members))
	rate := make([]models.Optional, 0, len(g.members))
	dup, wrong := 0.0, 0.0
	for _, m := range g.members {
		if !m.Correct {
			row.Correct = false
		}
		detect = append(detect, m.DetectTimeAverage)
		rate = append(rate, m.RateDetectedCrashes)
		dup += float64(m.NDuplicatedReportedCrashes)
		wrong += float64(m.NWronglyReportedCrashes)
	}
	row.DetectTimeAverage = PresentMean(detect)
	row.RateDetectedCrashes = PresentMean(rate)
	if n := float64(len(g.members)); n > 0 {
		row.NDuplicatedReportedCrashes = dup / n
		row.NWronglyReportedCrashes = wrong / n
	}
	return row
}

// PresentMean averages the present values and ignores absent ones. The
// result is absent when no value is present.
func PresentMean(values []models.Optional) models.Optional {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			present = append(present, v.Value)
		}
	}
	if len(present) == 0 {
		return models.None()
	}
	slices.Sort(present)
	return models.Some(stat.Mean(present, nil))
}

// groupKey encodes values by type and value; equal keys mean equal values.
func groupKey(values []any) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch val := v.(type) {
		case models.Optional:
			if val.Valid {
				fmt.Fprintf(&b, "o:%v", val.Value)
			} else {
				b.WriteString("o:-")
			}
		default:
			fmt.Fprintf(&b, "%T:%v", v, v)
		}
	}
	return b.String()
}

func compareRows(x, y []any) int {
	for i := range x {
		if c := compareValues(x[i], y[i]); c != 0 {
			return c
		}
	}
	return 0
}

// compareValues orders two values of the same field. Absent optionals sort first.
func compareValues(x, y any) int {
	switch a := x.(type) {
	case string:
		return cmp.Compare(a, y.(string))
	case int:
		return cmp.Compare(a, y.(int))
	case int64:
		return cmp.Compare(a, y.(int64))
	case float64:
		return cmp.Compare(a, y.(float64))
	case bool:
		b := y.(bool)
		switch {
		case a == b:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case models.Optional:
		b := y.(models.Optional)
		switch {
		case !a.Valid && !b.Valid:
			return 0
		case !a.Valid:
			return -1
		case !b.Valid:
			return 1
		default:
			return cmp.Compare(a.Value, b.Value)
		}
	default:
		return cmp.Compare(fmt.Sprint(x), fmt.Sprint(y))
	}
}
