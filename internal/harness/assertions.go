package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] step %d %s: %s\n", i+1, event.Step, event.Action, eventLabel(event))
		}
	}

	return buf.String()
}

// eventLabel renders an event as "Kind", "Kind:reason" or "Error:CODE".
func eventLabel(e TraceEvent) string {
	switch {
	case e.Error != "":
		return e.Kind + ":" + e.Error
	case e.Reason != "":
		return e.Kind + ":" + e.Reason
	}
	return e.Kind
}

// isNotification reports whether e came from the view rather than the harness.
func isNotification(e TraceEvent) bool {
	return e.Kind != EventPage && e.Kind != EventError
}

// assertVisible checks the final visible sequence.
func assertVisible(result *Result, assertion Assertion) error {
	if slices.Equal(result.Visible, assertion.Items) {
		return nil
	}
	return &AssertionError{
		Type:     AssertVisible,
		Expected: fmt.Sprintf("%v", assertion.Items),
		Actual:   fmt.Sprintf("%v", result.Visible),
		Trace:    result.Trace,
	}
}

// assertDuplicates checks the final duplicate set.
func assertDuplicates(result *Result, assertion Assertion) error {
	if slices.Equal(result.Duplicates, assertion.Items) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDuplicates,
		Expected: fmt.Sprintf("%v", assertion.Items),
		Actual:   fmt.Sprintf("%v", result.Duplicates),
		Trace:    result.Trace,
	}
}

// assertNotificationCount checks how many notifications match Kind and
// Reason. An empty Kind or Reason matches any.
func assertNotificationCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if !isNotification(event) {
			continue
		}
		if assertion.Kind != "" && event.Kind != assertion.Kind {
			continue
		}
		if assertion.Reason != "" && event.Reason != assertion.Reason {
			continue
		}
		count++
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertNotificationCount,
			Expected: fmt.Sprintf("%d notifications matching kind=%q reason=%q", assertion.Count, assertion.Kind, assertion.Reason),
			Actual:   fmt.Sprintf("%d notifications", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertNotificationOrder checks that the expected events appear in order.
// Events need not be consecutive. "Reset" matches any Reset notification,
// "Reset:sort" only one with that reason.
func assertNotificationOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Events) {
			break
		}
		if !isNotification(event) {
			continue
		}
		if matchEvent(event, assertion.Events[next]) {
			next++
		}
	}

	if next < len(assertion.Events) {
		return &AssertionError{
			Type:     AssertNotificationOrder,
			Expected: fmt.Sprintf("events in order: %v", assertion.Events),
			Actual:   fmt.Sprintf("missing %s after the first %d", assertion.Events[next], next),
			Trace:    trace,
		}
	}
	return nil
}

func matchEvent(event TraceEvent, want string) bool {
	kind, reason, hasReason := strings.Cut(want, ":")
	if event.Kind != kind {
		return false
	}
	return !hasReason || event.Reason == reason
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertVisible:
			err = assertVisible(result, assertion)
		case AssertDuplicates:
			err = assertDuplicates(result, assertion)
		case AssertNotificationCount:
			err = assertNotificationCount(result.Trace, assertion)
		case AssertNotificationOrder:
			err = assertNotificationOrder(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
