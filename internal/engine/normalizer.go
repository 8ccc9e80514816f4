package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gsfdstack/gsfd-analysis/internal/metrics"
	"github.com/gsfdstack/gsfd-analysis/internal/models"
	"github.com/gsfdstack/gsfd-analysis/internal/utils"
)

// IdentitySource tells where a seed or repetition number was read from.
type IdentitySource string

const (
	IdentityFromField IdentitySource = "field"
	IdentityFromID    IdentitySource = "id"
)

var (
	seedPattern       = regexp.MustCompile(`seed-([0-9]+)`)
	repetitionPattern = regexp.MustCompile(`repetition-([0-9]+)`)
)

// Normalizer turns raw simulator reports into Records.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer constructs a Normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize validates raw and computes the derived ratios and crash
// statistics of one run. It has no side effects besides logging and metrics,
// so normalizing the same report twice yields equal Records.
func (n *Normalizer) Normalize(group string, raw models.RawReport) (models.Record, error) {
	const op = "normalize"

	if err := checkRequired(raw); err != nil {
		return models.Record{}, utils.NewAppError(op, "missing required field", err)
	}
	id := *raw.ID
	settings := raw.Settings
	result := raw.Result
	logger := n.logger.With(slog.String("id", id), slog.String("group", group))

	seed, err := n.resolveIdentity(logger, "seed", raw.Seed, id, seedPattern)
	if err != nil {
		return models.Record{}, utils.NewAppError(op, "resolve seed", err)
	}
	repetition, err := n.resolveIdentity(logger, "repetition", raw.Repetition, id, repetitionPattern)
	if err != nil {
		return models.Record{}, utils.NewAppError(op, "resolve repetition", err)
	}

	nNodes := *settings.NumberOfNodes
	nReappeared := len(result.ReappearedNodes)
	class := Classify(result.ExpectedCrashes, result.ReportedCrashes, settings.SimulateCatastrophe, nNodes, nReappeared)
	if !class.Rate.Valid {
		logger.Warn("no detections expected, detection rate undefined",
			slog.Int("scheduled", class.NScheduled), slog.Int("nodes", nNodes))
		metrics.ObserveDegenerateStatistic(models.FieldRateDetectedCrashes.String())
	}

	timing := n.detectionTiming(logger, class)

	return models.Record{
		Group:      group,
		ID:         id,
		Seed:       seed,
		Repetition: repetition,

		SimulateCatastrophe:    settings.SimulateCatastrophe,
		NumberOfNodes:          nNodes,
		Duration:               settings.Duration,
		GossipDelta:            settings.GossipDelta,
		FailureDelta:           settings.FailureDelta,
		MissDelta:              models.OptionalFrom(settings.MissDelta),
		PushPull:               settings.PushPull,
		PickStrategy:           settings.PickStrategy,
		EnableMulticast:        settings.EnableMulticast,
		MulticastParameter:     models.OptionalFrom(settings.MulticastParameter),
		MulticastMaxWait:       models.OptionalFrom(settings.MulticastMaxWait),
		ExpectedFirstMulticast: models.OptionalFrom(settings.ExpectedFirstMulticast),

		RatioMaxWaitAndFailure:      ratio(settings.MulticastMaxWait, settings.FailureDelta),
		RatioExpectedFirstMulticast: ratio(settings.ExpectedFirstMulticast, settings.FailureDelta),
		RatioMissDelta:              ratio(settings.MissDelta, settings.FailureDelta),

		Correct:                    class.AllCorrect,
		NScheduledCrashes:          class.NScheduled,
		NExpectedDetectedCrashes:   class.NExpectedDetected,
		NCorrectlyDetectedCrashes:  len(class.Correct),
		NDuplicatedReportedCrashes: len(class.Duplicated),
		NWronglyReportedCrashes:    len(class.Wrong),
		NReappeared:                nReappeared,
		RateDetectedCrashes:        class.Rate,
		DetectTimeAverage:          timing.average,
		DetectTimeStdev:            timing.stdev,
		DetectTimeFirst:            timing.first,
		DetectTimeLast:             timing.last,
	}, nil
}

func checkRequired(raw models.RawReport) error {
	var missing string
	switch {
	case raw.ID == nil:
		missing = "id"
	case raw.Settings == nil:
		missing = "settings"
	case raw.Settings.NumberOfNodes == nil:
		missing = "settings.number_of_nodes"
	case raw.Result == nil:
		missing = "result"
	case raw.Result.ExpectedCrashes == nil:
		missing = "result.expected_crashes"
	case raw.Result.ReportedCrashes == nil:
		missing = "result.reported_crashes"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", utils.ErrMalformedReport, missing)
}

// resolveIdentity prefers the explicit report field and falls back to the
// "<name>-<digits>" pattern inside the run id.
func (n *Normalizer) resolveIdentity(logger *slog.Logger, name string, explicit *models.FlexInt, id string, pattern *regexp.Regexp) (int64, error) {
	if explicit != nil {
		metrics.ObserveIdentityResolution(name, string(IdentityFromField))
		return int64(*explicit), nil
	}

	match := pattern.FindStringSubmatch(id)
	if match == nil {
		return 0, fmt.Errorf("%w: no %s field and id %q does not match %s", utils.ErrUnparsableIdentity, name, id, pattern)
	}
	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", utils.ErrUnparsableIdentity, name, match[1], err)
	}
	logger.Debug("identity resolved from id", slog.String("field", name), slog.Int64("value", value))
	metrics.ObserveIdentityResolution(name, string(IdentityFromID))
	return value, nil
}

// ratio normalises a nullable setting by the failure timeout. A zero
// failureDelta yields an infinite or NaN ratio; it is not guarded against.
func ratio(value *float64, failureDelta float64) float64 {
	if value == nil {
		return 0
	}
	return utils.Round(*value/failureDelta, 2)
}

type timing struct {
	average models.Optional
	stdev   models.Optional
	first   models.Optional
	last    models.Optional
}

func (n *Normalizer) detectionTiming(logger *slog.Logger, class Classification) timing {
	delays := make([]float64, 0, len(class.Correct))
	for key, delta := range class.Correct {
		delay := delta - class.ExpectedByNode[key.Node]
		if delay < 0 {
			panic(fmt.Sprintf("engine: negative detection delay %v for node %s reported by %s", delay, key.Node, key.Reporter))
		}
		delays = append(delays, delay)
	}
	sort.Float64s(delays)

	var t timing
	if len(delays) > 0 {
		t.average = models.Some(stat.Mean(delays, nil))
		t.first = models.Some(floats.Min(delays))
		t.last = models.Some(floats.Max(delays))
	} else {
		logger.Warn("run has no detected failures, detection time average undefined")
		metrics.ObserveDegenerateStatistic(models.FieldDetectTimeAverage.String())
	}
	if len(delays) > 1 {
		t.stdev = models.Some(stat.StdDev(delays, nil))
	} else {
		logger.Warn("run has fewer than two detected failures, detection time stdev undefined",
			slog.Int("detections", len(delays)))
		metrics.ObserveDegenerateStatistic(models.FieldDetectTimeStdev.String())
	}
	return t
}
