package models

import (
	"fmt"
	"strconv"
)

// Field enumerates the columns of a Record, in export order.
type Field int

const (
	FieldGroup Field = iota
	FieldID
	FieldSeed
	FieldRepetition
	FieldSimulateCatastrophe
	FieldNumberOfNodes
	FieldDuration
	FieldGossipDelta
	FieldFailureDelta
	FieldMissDelta
	FieldPushPull
	FieldPickStrategy
	FieldEnableMulticast
	FieldMulticastParameter
	FieldMulticastMaxWait
	FieldExpectedFirstMulticast
	FieldRatioMaxWaitAndFailure
	FieldRatioExpectedFirstMulticast
	FieldRatioMissDelta
	FieldCorrect
	FieldNScheduledCrashes
	FieldNExpectedDetectedCrashes
	FieldNCorrectlyDetectedCrashes
	FieldNDuplicatedReportedCrashes
	FieldNWronglyReportedCrashes
	FieldNReappeared
	FieldRateDetectedCrashes
	FieldDetectTimeAverage
	FieldDetectTimeStdev
	FieldDetectTimeFirst
	FieldDetectTimeLast

	// NumFields is the number of Record fields. Arrays indexed by Field use it
	// as their length so that a new field shows up everywhere it must be handled.
	NumFields
)

var fieldNames = [NumFields]string{
	FieldGroup:                       "group",
	FieldID:                          "id",
	FieldSeed:                        "seed",
	FieldRepetition:                  "repetition",
	FieldSimulateCatastrophe:         "simulate_catastrophe",
	FieldNumberOfNodes:               "number_of_nodes",
	FieldDuration:                    "duration",
	FieldGossipDelta:                 "gossip_delta",
	FieldFailureDelta:                "failure_delta",
	FieldMissDelta:                   "miss_delta",
	FieldPushPull:                    "push_pull",
	FieldPickStrategy:                "pick_strategy",
	FieldEnableMulticast:             "enable_multicast",
	FieldMulticastParameter:          "multicast_parameter",
	FieldMulticastMaxWait:            "multicast_max_wait",
	FieldExpectedFirstMulticast:      "expected_first_multicast",
	FieldRatioMaxWaitAndFailure:      "ratio_max_wait_and_failure",
	FieldRatioExpectedFirstMulticast: "ratio_expected_first_multicast",
	FieldRatioMissDelta:              "ratio_miss_delta",
	FieldCorrect:                     "correct",
	FieldNScheduledCrashes:           "n_scheduled_crashes",
	FieldNExpectedDetectedCrashes:    "n_expected_detected_crashes",
	FieldNCorrectlyDetectedCrashes:   "n_correctly_detected_crashes",
	FieldNDuplicatedReportedCrashes:  "n_duplicated_reported_crashes",
	FieldNWronglyReportedCrashes:     "n_wrongly_reported_crashes",
	FieldNReappeared:                 "n_reappeared",
	FieldRateDetectedCrashes:         "rate_detected_crashes",
	FieldDetectTimeAverage:           "detect_time_average",
	FieldDetectTimeStdev:             "detect_time_stdev",
	FieldDetectTimeFirst:             "detect_time_first",
	FieldDetectTimeLast:              "detect_time_last",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, NumFields)
	for i, name := range fieldNames {
		m[name] = Field(i)
	}
	return m
}()

// String returns the column name of the field.
func (f Field) String() string {
	if f < 0 || f >= NumFields {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// UsesSentinel reports whether an absent value of the field is exported as -1
// rather than left empty. This keeps downstream charting scripts working.
func (f Field) UsesSentinel() bool {
	switch f {
	case FieldRateDetectedCrashes, FieldDetectTimeAverage, FieldDetectTimeStdev,
		FieldDetectTimeFirst, FieldDetectTimeLast:
		return true
	}
	return false
}

// ParseField resolves a column name.
func ParseField(name string) (Field, error) {
	f, ok := fieldsByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown record field %q", name)
	}
	return f, nil
}

// Fields returns every Record field in export order.
func Fields() []Field {
	out := make([]Field, NumFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// FieldNames returns the export header.
func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}
