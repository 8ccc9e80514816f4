package models

// Record is the processed summary of one simulation run. Records are built
// once by the normalizer and never mutated afterwards.
type Record struct {
	Group      string
	ID         string
	Seed       int64
	Repetition int64

	SimulateCatastrophe    bool
	NumberOfNodes          int
	Duration               float64
	GossipDelta            float64
	FailureDelta           float64
	MissDelta              Optional
	PushPull               bool
	PickStrategy           string
	EnableMulticast        bool
	MulticastParameter     Optional
	MulticastMaxWait       Optional
	ExpectedFirstMulticast Optional

	// Ratios are normalised by FailureDelta and rounded to two decimals; zero
	// when the numerator setting is absent.
	RatioMaxWaitAndFailure      float64
	RatioExpectedFirstMulticast float64
	RatioMissDelta              float64

	Correct                    bool
	NScheduledCrashes          int
	NExpectedDetectedCrashes   int
	NCorrectlyDetectedCrashes  int
	NDuplicatedReportedCrashes int
	NWronglyReportedCrashes    int
	NReappeared                int
	RateDetectedCrashes        Optional
	DetectTimeAverage          Optional
	DetectTimeStdev            Optional
	DetectTimeFirst            Optional
	DetectTimeLast             Optional
}

// Value returns the value of field f. The result is always comparable with ==.
func (r Record) Value(f Field) any {
	switch f {
	case FieldGroup:
		return r.Group
	case FieldID:
		return r.ID
	case FieldSeed:
		return r.Seed
	case FieldRepetition:
		return r.Repetition
	case FieldSimulateCatastrophe:
		return r.SimulateCatastrophe
	case FieldNumberOfNodes:
		return r.NumberOfNodes
	case FieldDuration:
		return r.Duration
	case FieldGossipDelta:
		return r.GossipDelta
	case FieldFailureDelta:
		return r.FailureDelta
	case FieldMissDelta:
		return r.MissDelta
	case FieldPushPull:
		return r.PushPull
	case FieldPickStrategy:
		return r.PickStrategy
	case FieldEnableMulticast:
		return r.EnableMulticast
	case FieldMulticastParameter:
		return r.MulticastParameter
	case FieldMulticastMaxWait:
		return r.MulticastMaxWait
	case FieldExpectedFirstMulticast:
		return r.ExpectedFirstMulticast
	case FieldRatioMaxWaitAndFailure:
		return r.RatioMaxWaitAndFailure
	case FieldRatioExpectedFirstMulticast:
		return r.RatioExpectedFirstMulticast
	case FieldRatioMissDelta:
		return r.RatioMissDelta
	case FieldCorrect:
		return r.Correct
	case FieldNScheduledCrashes:
		return r.NScheduledCrashes
	case FieldNExpectedDetectedCrashes:
		return r.NExpectedDetectedCrashes
	case FieldNCorrectlyDetectedCrashes:
		return r.NCorrectlyDetectedCrashes
	case FieldNDuplicatedReportedCrashes:
		return r.NDuplicatedReportedCrashes
	case FieldNWronglyReportedCrashes:
		return r.NWronglyReportedCrashes
	case FieldNReappeared:
		return r.NReappeared
	case FieldRateDetectedCrashes:
		return r.RateDetectedCrashes
	case FieldDetectTimeAverage:
		return r.DetectTimeAverage
	case FieldDetectTimeStdev:
		return r.DetectTimeStdev
	case FieldDetectTimeFirst:
		return r.DetectTimeFirst
	case FieldDetectTimeLast:
		return r.DetectTimeLast
	default:
		panic("models: unknown record field " + f.String())
	}
}
