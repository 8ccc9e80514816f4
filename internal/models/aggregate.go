package models

// AggregateRow reduces every Record sharing the same group-by values.
type AggregateRow struct {
	Dims    []Field
	Values  []any
	Members int

	// Correct is true iff every member run was correct.
	Correct bool
	// DetectTimeAverage and RateDetectedCrashes average only present member
	// values; absent when no member has one.
	DetectTimeAverage          Optional
	RateDetectedCrashes        Optional
	NDuplicatedReportedCrashes float64
	NWronglyReportedCrashes    float64
}

// Value returns the group-by value of f and whether f is a dimension of the row.
func (r AggregateRow) Value(f Field) (any, bool) {
	for i, d := range r.Dims {
		if d == f {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Aggregated statistic column names, in export order.
const (
	ColumnAggregatedCorrect             = "aggregated_correct"
	ColumnAggregatedDetectTimeAverage   = "aggregated_detect_time_average"
	ColumnAggregatedRateDetectedCrashes = "aggregated_rate_detected_crashes"
	ColumnNDuplicatedReportedCrashes    = "n_duplicated_reported_crashes"
	ColumnNWronglyReportedCrashes       = "n_wrongly_reported_crashes"
)

// AggregateColumns lists the statistic columns appended after the dimensions.
func AggregateColumns() []string {
	return []string{
		ColumnAggregatedCorrect,
		ColumnAggregatedDetectTimeAverage,
		ColumnAggregatedRateDetectedCrashes,
		ColumnNDuplicatedReportedCrashes,
		ColumnNWronglyReportedCrashes,
	}
}

// StatisticValues returns the reduced statistics aligned with AggregateColumns.
// Absent averages are rendered with the -1 sentinel.
func (r AggregateRow) StatisticValues() []string {
	return []string{
		FormatValue(FieldCorrect, r.Correct),
		FormatValue(FieldDetectTimeAverage, r.DetectTimeAverage),
		FormatValue(FieldRateDetectedCrashes, r.RateDetectedCrashes),
		FormatValue(FieldNDuplicatedReportedCrashes, r.NDuplicatedReportedCrashes),
		FormatValue(FieldNWronglyReportedCrashes, r.NWronglyReportedCrashes),
	}
}
