package api

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// QueryFilter is the decoded form of a ListRecords request.
type QueryFilter struct {
	Group string
}

// FromProtoListRecordsRequest maps the request struct into a filter. A nil
// request means no filter.
func FromProtoListRecordsRequest(req *structpb.Struct) (QueryFilter, error) {
	if req == nil {
		return QueryFilter{}, nil
	}
	v, ok := req.GetFields()["group"]
	if !ok {
		return QueryFilter{}, nil
	}
	group, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return QueryFilter{}, fmt.Errorf("group must be a string")
	}
	return QueryFilter{Group: group.StringValue}, nil
}

// FromProtoAggregateRequest extracts the requested layout name.
func FromProtoAggregateRequest(req *structpb.Struct) (string, error) {
	if req == nil {
		return "", fmt.Errorf("request is nil")
	}
	layout := strings.TrimSpace(req.GetFields()["layout"].GetStringValue())
	if layout == "" {
		return "", fmt.Errorf("layout is required")
	}
	return layout, nil
}

// ToProtoRecord converts a Record into a struct keyed by field name. Absent
// optional values become null.
func ToProtoRecord(rec models.Record) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, models.NumFields)
	for _, f := range models.Fields() {
		v, err := toProtoValue(rec.Value(f))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		fields[f.String()] = v
	}
	return &structpb.Struct{Fields: fields}, nil
}

// ToProtoRecords converts a Record table.
func ToProtoRecords(records []models.Record) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(records))}
	for _, rec := range records {
		s, err := ToProtoRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.ID, err)
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	return list, nil
}

// ToProtoAggregateRow converts an aggregate row: its dimensions, member count,
// and reduced statistics.
func ToProtoAggregateRow(row models.AggregateRow) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, len(row.Dims)+6)
	for i, d := range row.Dims {
		v, err := toProtoValue(row.Values[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		fields[d.String()] = v
	}
	fields["members"] = structpb.NewNumberValue(float64(row.Members))
	fields[models.ColumnAggregatedCorrect] = structpb.NewBoolValue(row.Correct)
	fields[models.ColumnAggregatedDetectTimeAverage] = optionalValue(row.DetectTimeAverage)
	fields[models.ColumnAggregatedRateDetectedCrashes] = optionalValue(row.RateDetectedCrashes)
	fields[models.ColumnNDuplicatedReportedCrashes] = structpb.NewNumberValue(row.NDuplicatedReportedCrashes)
	fields[models.ColumnNWronglyReportedCrashes] = structpb.NewNumberValue(row.NWronglyReportedCrashes)
	return &structpb.Struct{Fields: fields}, nil
}

// ToProtoAggregateRows converts an aggregated table.
func ToProtoAggregateRows(rows []models.AggregateRow) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(rows))}
	for _, row := range rows {
		s, err := ToProtoAggregateRow(row)
		if err != nil {
			return nil, err
		}
		list.Values = append(list.Values, structpb.NewStructValue(s))
	}
	return list, nil
}

func toProtoValue(v any) (*structpb.Value, error) {
	if opt, ok := v.(models.Optional); ok {
		return optionalValue(opt), nil
	}
	return structpb.NewValue(v)
}

func optionalValue(o models.Optional) *structpb.Value {
	if !o.Valid {
		return structpb.NewNullValue()
	}
	return structpb.NewNumberValue(o.Value)
}
