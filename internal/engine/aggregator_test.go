package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

func mustLayout(t *testing.T, spec models.LayoutSpec) *Layout {
	t.Helper()
	l, err := NewLayout(spec)
	require.NoError(t, err)
	require.NoError(t, l.Validate())
	return l
}

func baseRecord() models.Record {
	return models.Record{
		Group:             ".",
		ID:                "run",
		NumberOfNodes:     10,
		GossipDelta:       500,
		FailureDelta:      2000,
		PickStrategy:      "random",
		NScheduledCrashes: 2,
		Correct:           true,
	}
}

func TestBuiltInLayoutsClassifyEveryField(t *testing.T) {
	for _, spec := range models.DefaultLayouts() {
		l, err := NewLayout(spec)
		require.NoError(t, err, spec.Name)
		assert.NoError(t, l.Validate(), spec.Name)
	}
}

func TestLayoutGroupByOrder(t *testing.T) {
	l := mustLayout(t, models.FailureDeltaLayout())
	dims := l.GroupBy()
	require.NotEmpty(t, dims)
	assert.Equal(t, models.FieldFailureDelta, dims[0])
	assert.Equal(t, models.FieldPushPull, dims[1])
	assert.Equal(t, models.FieldPickStrategy, dims[len(dims)-1])
	assert.Equal(t, RoleKeep, l.Role(models.FieldSeed))
	assert.Equal(t, RoleStatistic, l.Role(models.FieldDetectTimeLast))
}

func TestLayoutRejectsUnknownAndAmbiguousFields(t *testing.T) {
	spec := models.FailureDeltaLayout()
	spec.Keep = append(spec.Keep, "no_such_field")
	_, err := NewLayout(spec)
	assert.True(t, errors.Is(err, utils.ErrUnknownField))

	spec = models.FailureDeltaLayout()
	spec.Same = append(spec.Same, "seed")
	_, err = NewLayout(spec)
	assert.True(t, errors.Is(err, utils.ErrAmbiguousField))

	spec = models.FailureDeltaLayout()
	spec.Statistics = spec.Statistics[1:]
	spec.Differentiate = append(spec.Differentiate, "correct")
	_, err = NewLayout(spec)
	assert.True(t, errors.Is(err, utils.ErrAmbiguousField), "reduced statistics cannot be dimensions")
}

func TestAggregateRejectsUnclassifiedFields(t *testing.T) {
	spec := models.FailureDeltaLayout()
	spec.Statistics = spec.Statistics[:len(spec.Statistics)-1]
	l, err := NewLayout(spec)
	require.NoError(t, err)

	rows, err := NewAggregator(discardLogger()).Aggregate([]models.Record{baseRecord()}, l)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, utils.ErrUnclassifiedField))

	var unclassified *UnclassifiedFieldError
	require.True(t, errors.As(err, &unclassified))
	assert.Equal(t, []models.Field{models.FieldDetectTimeLast}, unclassified.Fields)
	assert.Contains(t, err.Error(), "detect_time_last")
}

func TestAggregateSentinelAwareMean(t *testing.T) {
	l := mustLayout(t, models.FailureDeltaLayout())

	undefined := baseRecord()
	undefined.ID = "a"
	defined := baseRecord()
	defined.ID = "b"
	defined.DetectTimeAverage = models.Some(10)

	rows, err := NewAggregator(discardLogger()).Aggregate([]models.Record{undefined, defined}, l)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Some(10), rows[0].DetectTimeAverage)
	assert.Equal(t, 2, rows[0].Members)

	rows, err = NewAggregator(discardLogger()).Aggregate([]models.Record{undefined, undefined}, l)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].DetectTimeAverage.Valid)
	assert.Equal(t, "-1", rows[0].StatisticValues()[1])
}

func TestAggregateReductions(t *testing.T) {
	l := mustLayout(t, models.FailureDeltaLayout())

	r1 := baseRecord()
	r1.RateDetectedCrashes = models.Some(1)
	r1.NDuplicatedReportedCrashes = 2
	r1.NWronglyReportedCrashes = 1
	r2 := baseRecord()
	r2.Seed = 2
	r2.Correct = false
	r2.RateDetectedCrashes = models.Some(0.5)
	r2.NDuplicatedReportedCrashes = 0
	r2.NWronglyReportedCrashes = 0
	other := baseRecord()
	other.FailureDelta = 4000

	rows, err := NewAggregator(discardLogger()).Aggregate([]models.Record{other, r1, r2}, l)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	v, ok := first.Value(models.FieldFailureDelta)
	require.True(t, ok)
	assert.Equal(t, 2000.0, v, "rows are sorted by group-by values")
	assert.False(t, first.Correct)
	assert.Equal(t, models.Some(0.75), first.RateDetectedCrashes)
	assert.Equal(t, 1.0, first.NDuplicatedReportedCrashes)
	assert.Equal(t, 0.5, first.NWronglyReportedCrashes)

	assert.True(t, rows[1].Correct)
	assert.False(t, rows[1].RateDetectedCrashes.Valid)
}

func TestAggregateIgnoresInputOrder(t *testing.T) {
	l := mustLayout(t, models.MissDeltaLayout())
	var records []models.Record
	for i := 0; i < 12; i++ {
		r := baseRecord()
		r.Seed = int64(i)
		r.RatioMissDelta = float64(i%3) / 2
		r.PushPull = i%2 == 0
		r.DetectTimeAverage = models.Some(float64(100 + i))
		records = append(records, r)
	}
	reversed := make([]models.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	agg := NewAggregator(discardLogger())
	a, err := agg.Aggregate(records, l)
	require.NoError(t, err)
	b, err := agg.Aggregate(reversed, l)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("aggregate depends on input order (-forward +reversed):\n%s", diff)
	}
	assert.Len(t, a, 6)
}

func TestPresentMean(t *testing.T) {
	assert.False(t, PresentMean(nil).Valid)
	assert.False(t, PresentMean([]models.Optional{models.None(), models.None()}).Valid)
	assert.Equal(t, models.Some(10), PresentMean([]models.Optional{models.None(), models.Some(10)}))
	assert.Equal(t, models.Some(2), PresentMean([]models.Optional{models.Some(1), models.Some(3)}))
}
