package models

// LayoutSpec assigns every Record field to exactly one aggregation bucket.
// Group-by dimensions are XAxis, then Same, then Differentiate.
type LayoutSpec struct {
	Name          string   `yaml:"name"`
	XAxis         []string `yaml:"x"`
	Keep          []string `yaml:"keep"`
	Same          []string `yaml:"same"`
	Differentiate []string `yaml:"differentiate"`
	Statistics    []string `yaml:"statistics"`
}

var (
	keptFields = []string{
		"id", "group", "seed", "repetition", "multicast_max_wait", "miss_delta",
		"multicast_parameter", "expected_first_multicast", "duration",
	}
	statisticFields = []string{
		"correct", "n_expected_detected_crashes", "n_correctly_detected_crashes",
		"n_duplicated_reported_crashes", "n_wrongly_reported_crashes", "n_reappeared",
		"rate_detected_crashes", "detect_time_average", "detect_time_stdev",
		"detect_time_first", "detect_time_last",
	}
)

// FailureDeltaLayout plots statistics against the failure timeout.
func FailureDeltaLayout() LayoutSpec {
	return LayoutSpec{
		Name:  "failure_delta",
		XAxis: []string{"failure_delta"},
		Keep:  append([]string(nil), keptFields...),
		Same:  []string{"push_pull"},
		Differentiate: []string{
			"number_of_nodes", "simulate_catastrophe", "n_scheduled_crashes",
			"gossip_delta", "enable_multicast", "ratio_max_wait_and_failure",
			"ratio_expected_first_multicast", "ratio_miss_delta", "pick_strategy",
		},
		Statistics: append([]string(nil), statisticFields...),
	}
}

// MissDeltaLayout plots statistics against the miss timeout ratio.
func MissDeltaLayout() LayoutSpec {
	return LayoutSpec{
		Name:  "miss_delta",
		XAxis: []string{"ratio_miss_delta"},
		Keep:  append([]string(nil), keptFields...),
		Same:  []string{"push_pull"},
		Differentiate: []string{
			"number_of_nodes", "failure_delta", "simulate_catastrophe",
			"n_scheduled_crashes", "gossip_delta", "enable_multicast",
			"ratio_max_wait_and_failure", "ratio_expected_first_multicast", "pick_strategy",
		},
		Statistics: append([]string(nil), statisticFields...),
	}
}

// DefaultLayouts returns the layouts used when the configuration names none.
func DefaultLayouts() []LayoutSpec {
	return []LayoutSpec{FailureDeltaLayout(), MissDeltaLayout()}
}
