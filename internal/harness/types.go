package harness

// TraceEvent records one observable outcome of a step: a notification,
// the page returned by a query, or an expected error.
type TraceEvent struct {
	Step   int      `json:"step"`
	Action string   `json:"action"`
	Kind   string   `json:"kind,omitempty"` // Added, Deleted, Reset, Page or Error
	Reason string   `json:"reason,omitempty"`
	Items  []string `json:"items,omitempty"`
	Seq    uint64   `json:"seq,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Trace event kinds that are not notifications.
const (
	EventPage  = "Page"
	EventError = "Error"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every notification and query page in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Visible is the final visible sequence as key values.
	Visible []string `json:"visible"`

	// Duplicates are the key values of the final Duplicates() set.
	Duplicates []string `json:"duplicates"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Trace:      []TraceEvent{},
		Errors:     []string{},
		Visible:    []string{},
		Duplicates: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends an event to the trace.
func (r *Result) AddEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
