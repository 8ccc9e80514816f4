package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/gsfdstack/gsfd-analysis/internal/engine"
	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// FacetWriter writes one delimited file per facet, ready for a charting tool.
// Each row carries its series label so every line of the chart can be drawn
// without re-deriving the split.
type FacetWriter struct {
	Dir    string
	Prefix string

	written []string
}

// NewFacetWriter writes facet files named <prefix><facet name>.csv into dir.
func NewFacetWriter(dir, prefix string) *FacetWriter {
	return &FacetWriter{Dir: dir, Prefix: prefix}
}

var _ engine.FacetSink = (*FacetWriter)(nil)

// WriteFacet implements engine.FacetSink.
func (w *FacetWriter) WriteFacet(layout *engine.Layout, facet engine.Facet) error {
	path := filepath.Join(w.Dir, fileName(w.Prefix, facet.Name))
	err := WriteFile(path, func(out io.Writer) error {
		return writeSeries(out, layout, facet)
	})
	if err != nil {
		return err
	}
	w.written = append(w.written, path)
	return nil
}

// Written returns the files produced so far.
func (w *FacetWriter) Written() []string {
	return append([]string(nil), w.written...)
}

// maxFileName stays under the 255 byte limit of common file systems.
const maxFileName = 240

var pathSeparators = strings.NewReplacer("/", "_", "\\", "_")

// fileName turns a facet name into a single path element. Separators coming
// from report values are replaced; overlong names are cut and suffixed with a
// hash of the full name so distinct facets keep distinct files.
func fileName(prefix, facet string) string {
	if facet == "" {
		facet = "all"
	}
	name := pathSeparators.Replace(prefix + facet)
	const ext = ".csv"
	if len(name)+len(ext) <= maxFileName {
		return name + ext
	}
	sum := fmt.Sprintf("%016x", xxhash.Sum64String(prefix+facet))
	cut := maxFileName - len(ext) - len(sum) - 2
	return name[:cut] + "__" + sum + ext
}

func writeSeries(out io.Writer, layout *engine.Layout, facet engine.Facet) error {
	cw := csv.NewWriter(out)
	dims := append(layout.XAxis(), layout.Same()...)
	header := []string{"series"}
	for _, d := range dims {
		header = append(header, d.String())
	}
	header = append(header, models.AggregateColumns()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, series := range facet.Series(layout) {
		for _, row := range series.Rows {
			line := []string{series.Label}
			for _, d := range dims {
				v, _ := row.Value(d)
				line = append(line, models.FormatValue(d, v))
			}
			line = append(line, row.StatisticValues()...)
			if err := cw.Write(line); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
