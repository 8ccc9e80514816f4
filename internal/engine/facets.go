package engine

import (
	"fmt"
	"strings"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// Facet is one chart worth of aggregated rows: a single combination of the
// layout's differentiate values.
type Facet struct {
	Name   string
	Dims   []models.Field
	Values []any
	Rows   []models.AggregateRow
}

// Series is one line of a facet: rows sharing the same-plot values and the
// aggregated correct flag.
type Series struct {
	Label   string
	Same    []any
	Correct bool
	Rows    []models.AggregateRow
}

// FacetSink consumes facets, typically by rendering or exporting a chart.
type FacetSink interface {
	WriteFacet(layout *Layout, facet Facet) error
}

// Facets enumerates the cartesian product of the unique differentiate values
// found in rows, in first-seen order, and returns the non-empty combinations.
func Facets(rows []models.AggregateRow, layout *Layout) []Facet {
	dims := layout.Differentiate()
	uniques := make([][]any, len(dims))
	for i, d := range dims {
		seen := make(map[string]struct{})
		for _, row := range rows {
			v, _ := row.Value(d)
			k := groupKey([]any{v})
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			uniques[i] = append(uniques[i], v)
		}
	}

	var facets []Facet
	forEachCombination(uniques, func(combo []any) {
		matching := filterRows(rows, dims, combo)
		if len(matching) == 0 {
			return
		}
		facets = append(facets, Facet{
			Name:   facetName(dims, combo),
			Dims:   dims,
			Values: append([]any(nil), combo...),
			Rows:   matching,
		})
	})
	return facets
}

// Render drives sink with every facet of rows.
func Render(sink FacetSink, rows []models.AggregateRow, layout *Layout) error {
	for _, facet := range Facets(rows, layout) {
		if err := sink.WriteFacet(layout, facet); err != nil {
			return fmt.Errorf("facet %s: %w", facet.Name, err)
		}
	}
	return nil
}

// Series splits the facet by the layout's same-plot values and the
// aggregated correct flag, correct series first.
func (f Facet) Series(layout *Layout) []Series {
	same := layout.Same()
	index := make(map[string]int)
	var out []Series
	for _, correct := range []bool{true, false} {
		for _, row := range f.Rows {
			if row.Correct != correct {
				continue
			}
			values := make([]any, len(same))
			for i, d := range same {
				values[i], _ = row.Value(d)
			}
			key := fmt.Sprintf("%t|%s", correct, groupKey(values))
			i, ok := index[key]
			if !ok {
				i = len(out)
				index[key] = i
				out = append(out, Series{
					Label:   seriesLabel(same, values, correct),
					Same:    values,
					Correct: correct,
				})
			}
			out[i].Rows = append(out[i].Rows, row)
		}
	}
	return out
}

func forEachCombination(uniques [][]any, fn func([]any)) {
	for _, u := range uniques {
		if len(u) == 0 {
			return
		}
	}
	idx := make([]int, len(uniques))
	combo := make([]any, len(uniques))
	for {
		for i, j := range idx {
			combo[i] = uniques[i][j]
		}
		fn(combo)

		pos := len(idx) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(uniques[pos]) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return
		}
	}
}

func filterRows(rows []models.AggregateRow, dims []models.Field, combo []any) []models.AggregateRow {
	var out []models.AggregateRow
	for _, row := range rows {
		match := true
		for i, d := range dims {
			v, _ := row.Value(d)
			if groupKey([]any{v}) != groupKey([]any{combo[i]}) {
				match = false
				break
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out
}

func facetName(dims []models.Field, values []any) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprintf("%s-%s", d, models.FormatValue(d, values[i]))
	}
	return strings.Join(parts, "__")
}

func seriesLabel(dims []models.Field, values []any, correct bool) string {
	parts := make([]string, 0, len(dims))
	for i, d := range dims {
		parts = append(parts, fmt.Sprintf("%s=%s", d, models.FormatValue(d, values[i])))
	}
	state := "wrong"
	if correct {
		state = "correct"
	}
	if len(parts) == 0 {
		return state
	}
	return fmt.Sprintf("%s [%s]", strings.Join(parts, ","), state)
}
