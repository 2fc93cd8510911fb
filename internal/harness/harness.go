package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/odata"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/testutil"
	"github.com/roach88/sieve/internal/view"
)

// Harness executes one scenario against a fresh view.
type Harness struct {
	schema *schema.Schema
	view   *view.View[schema.Record]
	key    accessor.Field[schema.Record]
	logger *slog.Logger
	result *Result

	// step and action identify the step being executed, so notifications
	// delivered during it are attributed correctly.
	step   int
	action string
}

// Run loads the scenario's schema and executes the scenario.
//
// Each scenario runs on its own view with a fixed view ID and a discarded
// logger, so identical scenarios produce identical traces.
//
// Execution flow:
// 1. Load the CUE schema and decode the initial records
// 2. Build the view and subscribe to its notifications
// 3. Execute steps, checking each step's expectation
// 4. Evaluate assertions against the final trace and view
func Run(scenario *Scenario) (*Result, error) {
	s, err := schema.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return RunWithSchema(scenario, s)
}

// RunWithSchema executes a scenario with an already compiled schema.
// The scenario's Schema path is ignored.
func RunWithSchema(scenario *Scenario, s *schema.Schema) (*Result, error) {
	reg := s.Registry()
	key, err := reg.Lookup(scenario.Key)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}

	records, err := s.DecodeAll(scenario.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	h := &Harness{
		schema: s,
		key:    key,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result: NewResult(),
		step:   -1,
	}
	h.view = view.New(reg, records,
		view.WithLogger(h.logger),
		view.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.ViewID)),
	)
	cancel := h.view.Subscribe(h.record)
	defer cancel()

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}

	h.result.Visible = h.keys(h.view.Items())
	h.result.Duplicates = h.keys(h.view.Duplicates())

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// executeStep applies one step to the view.
//
// Errors raised by the view or the query parser are outcomes, checked
// against the step's expectation. Only malformed step input is returned
// as an error.
func (h *Harness) executeStep(i int, step Step) error {
	h.step, h.action = i, step.Action

	var page []schema.Record
	var opErr error

	switch step.Action {
	case ActionFilter:
		g, err := odata.ParseFilter(step.Filter)
		if err == nil {
			err = h.view.ApplyFilter(g)
		}
		opErr = err
	case ActionClearFilter:
		h.view.RemoveFilter()
	case ActionSort:
		spec, err := odata.ParseOrderBy(step.OrderBy)
		if err == nil {
			err = h.view.ApplySort(spec)
		}
		opErr = err
	case ActionClearSort:
		h.view.RemoveSort()
	case ActionQuery:
		q, err := odata.Parse(step.Options)
		if err == nil {
			page, err = odata.Apply(h.view, q)
		}
		opErr = err
	case ActionAdd:
		recs, err := h.schema.DecodeAll(step.Records)
		if err != nil {
			return err
		}
		h.view.Add(recs...)
	case ActionRemove:
		recs, err := h.schema.DecodeAll(step.Records)
		if err != nil {
			return err
		}
		h.view.Remove(recs...)
	case ActionRemoveAll:
		h.view.RemoveAll()
	case ActionRemoveWhere:
		g, err := odata.ParseFilter(step.Filter)
		if err == nil {
			_, err = h.view.RemoveWhere(g)
		}
		opErr = err
	case ActionDedupe:
		h.view.SetDedupe(step.On)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}

	h.check(i, step, page, opErr)

	h.logger.Info("step completed",
		"step", i,
		"action", step.Action,
		"visible", h.view.Len(),
	)
	return nil
}

// check compares a step's outcome with its expectation.
func (h *Harness) check(i int, step Step, page []schema.Record, opErr error) {
	var want Expect
	if step.Expect != nil {
		want = *step.Expect
	}

	if opErr != nil {
		code := errorCode(opErr)
		h.result.AddEvent(TraceEvent{Step: i, Action: step.Action, Kind: EventError, Error: code})

		switch {
		case want.Error == "":
			h.result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Action, opErr))
		case want.Error != code:
			h.result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s", i, step.Action, want.Error, code))
		}
	} else if want.Error != "" {
		h.result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got none", i, step.Action, want.Error))
	}

	actual := h.keys(h.view.Items())
	if step.Action == ActionQuery && opErr == nil {
		actual = h.keys(page)
		h.result.AddEvent(TraceEvent{Step: i, Action: step.Action, Kind: EventPage, Items: actual})
	}

	if want.Visible != nil && !slices.Equal(want.Visible, actual) {
		err := &AssertionError{
			Type:     fmt.Sprintf("steps[%d] %s", i, step.Action),
			Expected: fmt.Sprintf("visible %v", want.Visible),
			Actual:   fmt.Sprintf("visible %v", actual),
			Trace:    h.result.Trace,
		}
		h.result.AddError(err.Error())
	}
}

// record appends a notification to the trace.
func (h *Harness) record(n view.Notification[schema.Record]) {
	h.result.AddEvent(TraceEvent{
		Step:   h.step,
		Action: h.action,
		Kind:   string(n.Kind),
		Reason: string(n.Reason),
		Items:  h.keys(n.Items),
		Seq:    n.Seq,
	})
}

// keys renders records by their key field.
func (h *Harness) keys(recs []schema.Record) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = h.key.Get(rec).String()
	}
	return out
}

// errorCode returns the code of a compile error, or "ERROR" for anything else.
func errorCode(err error) string {
	var qe *queryir.Error
	if errors.As(err, &qe) {
		return string(qe.Code)
	}
	return "ERROR"
}
