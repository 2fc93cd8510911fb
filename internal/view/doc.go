// Package view maintains a materialized, change-notifying view over an
// in-memory record collection.
//
// A View owns a backing sequence and derives its visible sequence from it
// through a fixed pipeline:
//
//	backing -> de-duplicate (optional) -> filter -> stable sort -> visible
//
// The visible sequence is recomputed from scratch after every mutation; it is
// never patched. Each mutation that observers must react to emits one
// Notification: Added for appended records, Deleted for removed records and
// Reset when the filter, sort or de-duplication setting changes.
//
// Thread-safety model:
//   - a View has a single logical owner; it does no internal locking
//   - notifications are delivered inline after the mutation completes, or
//     handed to the dispatch function given with WithDispatch
//   - mutating the view from an observer callback is not supported
package view
