package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/odata"
)

// Scenario defines a view scenario: a record schema, an initial backing
// store, and a sequence of steps applied to one view.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path to the CUE record schema.
	// Relative paths are resolved against the scenario file's directory.
	Schema string `yaml:"schema"`

	// Key names the field used to identify records in traces and
	// expectations. Nested paths are allowed.
	Key string `yaml:"key"`

	// ViewID is stamped on every notification. Defaults to "test-view".
	ViewID string `yaml:"view_id,omitempty"`

	// Records is the initial backing store.
	Records []map[string]any `yaml:"records"`

	// Steps are applied to the view in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and view state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation on the view.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Filter is a $filter expression (filter, remove_where).
	Filter string `yaml:"filter,omitempty"`

	// OrderBy is an $orderby expression (sort).
	OrderBy string `yaml:"orderby,omitempty"`

	// Options are raw query options (query).
	Options []odata.Option `yaml:"options,omitempty"`

	// Records are the records to add or remove (add, remove).
	Records []map[string]any `yaml:"records,omitempty"`

	// On toggles de-duplication (dedupe).
	On bool `yaml:"on,omitempty"`

	// Expect checks the outcome of this step. If nil, any error fails
	// the scenario and the visible sequence is not checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Visible is the expected visible sequence (the returned page for
	// query steps) as key values. Nil skips the check.
	Visible []string `yaml:"visible,omitempty"`

	// Error is the expected error code, e.g. "UNKNOWN_PROPERTY".
	// A step expected to fail must leave the view unchanged.
	Error string `yaml:"error,omitempty"`
}

// Step actions.
const (
	ActionFilter      = "filter"
	ActionClearFilter = "clear_filter"
	ActionSort        = "sort"
	ActionClearSort   = "clear_sort"
	ActionQuery       = "query"
	ActionAdd         = "add"
	ActionRemove      = "remove"
	ActionRemoveAll   = "remove_all"
	ActionRemoveWhere = "remove_where"
	ActionDedupe      = "dedupe"
)

// Assertion validates the final trace or view state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "visible": final visible keys equal Items, in order
	// - "duplicates": Duplicates() keys equal Items, in order
	// - "notification_count": Count notifications match Kind and Reason
	// - "notification_order": Events ("Kind" or "Kind:reason") appear in order
	Type string `yaml:"type"`

	// Items are expected key values (visible, duplicates).
	Items []string `yaml:"items,omitempty"`

	// Kind and Reason filter notifications (notification_count).
	// Empty matches any.
	Kind   string `yaml:"kind,omitempty"`
	Reason string `yaml:"reason,omitempty"`

	// Count is the expected number of notifications (notification_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected notification order (notification_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion type constants.
const (
	AssertVisible           = "visible"
	AssertDuplicates        = "duplicates"
	AssertNotificationCount = "notification_count"
	AssertNotificationOrder = "notification_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The schema path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}
	if _, err := os.Stat(scenario.Schema); err != nil {
		return nil, fmt.Errorf("invalid scenario: schema file not found: %s", scenario.Schema)
	}

	return scenario, nil
}

// ParseScenario decodes and validates a scenario without touching the
// filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Schema == "" {
		return fmt.Errorf("schema is required")
	}
	if s.Key == "" {
		return fmt.Errorf("key is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its action.
func validateStep(index int, s *Step) error {
	switch s.Action {
	case ActionFilter, ActionRemoveWhere:
		if s.Filter == "" {
			return fmt.Errorf("steps[%d]: filter is required for %s", index, s.Action)
		}
	case ActionSort:
		if s.OrderBy == "" {
			return fmt.Errorf("steps[%d]: orderby is required for sort", index)
		}
	case ActionQuery:
		if len(s.Options) == 0 {
			return fmt.Errorf("steps[%d]: options are required for query", index)
		}
	case ActionAdd, ActionRemove:
		if len(s.Records) == 0 {
			return fmt.Errorf("steps[%d]: records are required for %s", index, s.Action)
		}
	case ActionClearFilter, ActionClearSort, ActionRemoveAll, ActionDedupe:
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertVisible, AssertDuplicates:
	case AssertNotificationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notification_count", index)
		}
	case AssertNotificationOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for notification_order", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
