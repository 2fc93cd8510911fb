package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/testutil"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	ViewID       string       `json:"view_id,omitempty"`
	Trace        []TraceEvent `json:"trace"`
	Visible      []string     `json:"visible"`
}

// NewTraceSnapshot builds the snapshot of a scenario run.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	viewID := scenario.ViewID
	if viewID == "" {
		viewID = testutil.DefaultViewID
	}
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		ViewID:       viewID,
		Trace:        result.Trace,
		Visible:      result.Visible,
	}
}

// Marshal returns the canonical JSON encoding of the snapshot.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.Canonical())
}

// Canonical converts the snapshot to an IR object for canonical JSON
// serialization. Empty optional fields are omitted.
func (s *TraceSnapshot) Canonical() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.IRObject{
			"step":   ir.IRInt(event.Step),
			"action": ir.IRString(event.Action),
			"kind":   ir.IRString(event.Kind),
		}
		if event.Reason != "" {
			obj["reason"] = ir.IRString(event.Reason)
		}
		if len(event.Items) > 0 {
			obj["items"] = stringsIR(event.Items)
		}
		if event.Seq > 0 {
			obj["seq"] = ir.IRInt(event.Seq)
		}
		if event.Error != "" {
			obj["error"] = ir.IRString(event.Error)
		}
		trace[i] = obj
	}

	out := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"trace":         trace,
		"visible":       stringsIR(s.Visible),
	}
	if s.ViewID != "" {
		out["view_id"] = ir.IRString(s.ViewID)
	}
	return out
}

func stringsIR(ss []string) ir.IRArray {
	arr := make(ir.IRArray, len(ss))
	for i, s := range ss {
		arr[i] = ir.IRString(s)
	}
	return arr
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := NewTraceSnapshot(scenario, result)
	if err := AssertGolden(t, &snapshot); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a snapshot against the golden file named after its
// scenario. This is useful when you've already run a scenario and want to
// compare the result against a golden file without re-running.
func AssertGolden(t *testing.T, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, snapshot.ScenarioName, traceJSON)

	return nil
}
