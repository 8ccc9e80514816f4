package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NodeID identifies a simulated node. Reports written by older simulator
// builds use numbers, newer ones use strings; both decode to the same text.
type NodeID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (n *NodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NodeID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("node id must be a string or number: %w", err)
	}
	*n = NodeID(num.String())
	return nil
}

// ExpectedCrash is a crash scheduled by the simulator at Delta ms after the run start.
type ExpectedCrash struct {
	Node  NodeID  `json:"node"`
	Delta float64 `json:"delta"`
}

// ReportedCrash is a claim by Reporter that Node crashed, observed at Delta.
type ReportedCrash struct {
	Node     NodeID  `json:"node"`
	Reporter NodeID  `json:"reporter"`
	Delta    float64 `json:"delta"`
}

// Key returns the detection slot the report belongs to.
func (r ReportedCrash) Key() CrashKey {
	return CrashKey{Node: r.Node, Reporter: r.Reporter}
}

// CrashKey identifies one detection slot: a reporter noticing a node.
type CrashKey struct {
	Node     NodeID
	Reporter NodeID
}

// RawReport is the JSON document the simulator writes for one run. Pointer
// fields distinguish absent keys from zero values.
type RawReport struct {
	ID         *string      `json:"id"`
	Seed       *FlexInt     `json:"seed"`
	Repetition *FlexInt     `json:"repetition"`
	Settings   *RawSettings `json:"settings"`
	Result     *RawResult   `json:"result"`
}

// RawSettings holds the configured scenario of a run.
type RawSettings struct {
	NumberOfNodes          *int     `json:"number_of_nodes"`
	Duration               float64  `json:"duration"`
	GossipDelta            float64  `json:"gossip_delta"`
	FailureDelta           float64  `json:"failure_delta"`
	MissDelta              *float64 `json:"miss_delta"`
	PushPull               bool     `json:"push_pull"`
	PickStrategy           string   `json:"pick_strategy"`
	EnableMulticast        bool     `json:"enable_multicast"`
	MulticastParameter     *float64 `json:"multicast_parameter"`
	MulticastMaxWait       *float64 `json:"multicast_max_wait"`
	ExpectedFirstMulticast *float64 `json:"expected_first_multicast"`
	SimulateCatastrophe    bool     `json:"simulate_catastrophe"`
}

// RawResult holds what happened during a run.
type RawResult struct {
	ExpectedCrashes []ExpectedCrash `json:"expected_crashes"`
	ReportedCrashes []ReportedCrash `json:"reported_crashes"`
	ReappearedNodes []NodeID        `json:"reappeared_nodes"`
}

// FlexInt decodes an integer written either as a JSON number or as a
// numeric string.
type FlexInt int64

// UnmarshalJSON accepts 7, 7.0 and "7".
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		*f = FlexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v != float64(int64(v)) {
		return fmt.Errorf("expected an integer, got %s", string(data))
	}
	*f = FlexInt(int64(v))
	return nil
}
