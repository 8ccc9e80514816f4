package api

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

func TestFromProtoListRecordsRequest(t *testing.T) {
	filter, err := FromProtoListRecordsRequest(nil)
	if err != nil || filter.Group != "" {
		t.Fatalf("expected empty filter for nil request, got %+v, %v", filter, err)
	}

	req, _ := structpb.NewStruct(map[string]any{"group": "sub/dir"})
	filter, err = FromProtoListRecordsRequest(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filter.Group != "sub/dir" {
		t.Fatalf("unexpected group: %s", filter.Group)
	}

	bad, _ := structpb.NewStruct(map[string]any{"group": 3})
	if _, err := FromProtoListRecordsRequest(bad); err == nil {
		t.Fatalf("expected error for non-string group")
	}
}

func TestFromProtoAggregateRequest(t *testing.T) {
	if _, err := FromProtoAggregateRequest(nil); err == nil {
		t.Fatalf("expected error for nil request")
	}
	empty, _ := structpb.NewStruct(map[string]any{"layout": "  "})
	if _, err := FromProtoAggregateRequest(empty); err == nil {
		t.Fatalf("expected error for blank layout")
	}
	req, _ := structpb.NewStruct(map[string]any{"layout": "miss_delta"})
	layout, err := FromProtoAggregateRequest(req)
	if err != nil || layout != "miss_delta" {
		t.Fatalf("unexpected layout %q, %v", layout, err)
	}
}

func TestToProtoRecord(t *testing.T) {
	rec := models.Record{
		Group:             ".",
		ID:                "seed-1__repetition-0",
		Seed:              1,
		NumberOfNodes:     3,
		FailureDelta:      3000,
		MissDelta:         models.Some(1500),
		Correct:           true,
		DetectTimeAverage: models.Some(60),
	}

	s, err := ToProtoRecord(rec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fields := s.GetFields()
	if len(fields) != int(models.NumFields) {
		t.Fatalf("expected %d fields, got %d", models.NumFields, len(fields))
	}
	if fields["seed"].GetNumberValue() != 1 {
		t.Fatalf("unexpected seed %v", fields["seed"])
	}
	if fields["miss_delta"].GetNumberValue() != 1500 {
		t.Fatalf("unexpected miss_delta %v", fields["miss_delta"])
	}
	if _, ok := fields["detect_time_stdev"].GetKind().(*structpb.Value_NullValue); !ok {
		t.Fatalf("expected absent stdev to be null, got %v", fields["detect_time_stdev"])
	}
	if !fields["correct"].GetBoolValue() {
		t.Fatalf("expected correct to be true")
	}
}

func TestToProtoAggregateRows(t *testing.T) {
	rows := []models.AggregateRow{{
		Dims:                       []models.Field{models.FieldFailureDelta, models.FieldPushPull},
		Values:                     []any{2000.0, true},
		Members:                    4,
		Correct:                    true,
		DetectTimeAverage:          models.None(),
		RateDetectedCrashes:        models.Some(0.75),
		NDuplicatedReportedCrashes: 1.5,
	}}

	list, err := ToProtoAggregateRows(rows)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list.GetValues()) != 1 {
		t.Fatalf("expected one row, got %d", len(list.GetValues()))
	}
	fields := list.GetValues()[0].GetStructValue().GetFields()
	if fields["failure_delta"].GetNumberValue() != 2000 || !fields["push_pull"].GetBoolValue() {
		t.Fatalf("unexpected dimensions %v", fields)
	}
	if fields["members"].GetNumberValue() != 4 {
		t.Fatalf("unexpected members %v", fields["members"])
	}
	if _, ok := fields[models.ColumnAggregatedDetectTimeAverage].GetKind().(*structpb.Value_NullValue); !ok {
		t.Fatalf("expected absent average to be null")
	}
	if fields[models.ColumnAggregatedRateDetectedCrashes].GetNumberValue() != 0.75 {
		t.Fatalf("unexpected rate %v", fields[models.ColumnAggregatedRateDetectedCrashes])
	}
}
