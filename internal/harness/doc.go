// Package harness runs view scenarios described in YAML.
//
// A scenario loads a CUE record schema, seeds a view with records, applies a
// sequence of steps, and checks the notifications and visible sequences the
// view produces.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: ../people.cue
//	key: Name
//	records:
//	  - {Name: Bob, Age: 30}
//	steps:
//	  - action: filter
//	    filter: Age eq 25
//	    expect:
//	      visible: [ann, Carl]
//	  - action: query
//	    options:
//	      - {option: $orderby, query: Name desc}
//	      - {option: $top, query: "2"}
//	assertions:
//	  - type: notification_order
//	    events: ["Reset:filter", Added]
//
// Step actions are filter, clear_filter, sort, clear_sort, query, add,
// remove, remove_all, remove_where and dedupe. A step may expect an error
// code, in which case the view must be left unchanged.
//
// # Assertion Types
//
//   - visible: the final visible sequence, by key
//   - duplicates: the final Duplicates() set, by key
//   - notification_count: number of notifications with a kind and reason
//   - notification_order: notifications appear in the given order
//
// # Deterministic Testing
//
// Every scenario runs on a fresh view with a fixed view ID and discarded
// logs, so traces are byte-identical across runs and can be compared with
// golden files (see RunWithGolden).
package harness
