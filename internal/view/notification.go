package view

// Kind classifies a notification.
type Kind string

const (
	Added   Kind = "Added"
	Deleted Kind = "Deleted"
	Reset   Kind = "Reset"
)

// Reason names the input whose change triggered a notification.
type Reason string

const (
	ReasonItems  Reason = "items"
	ReasonFilter Reason = "filter"
	ReasonSort   Reason = "sort"
	ReasonDedupe Reason = "dedupe"
)

// Notification describes one change to a view.
//
// Items holds the appended records for Added, the removed records for
// Deleted, and the new visible sequence for Reset. Seq increases by one per
// notification of a view, starting at 1.
type Notification[T any] struct {
	Kind   Kind
	Reason Reason
	Items  []T
	Seq    uint64
	ViewID string
}

// Observer receives notifications.
type Observer[T any] func(Notification[T])
