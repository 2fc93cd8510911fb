package view

import (
	"log/slog"
	"slices"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/ordering"
	"github.com/roach88/sieve/internal/predicate"
	"github.com/roach88/sieve/internal/queryir"
)

// View is a materialized, change-notifying view over records of type T.
type View[T any] struct {
	id       string
	reg      *accessor.Registry[T]
	logger   *slog.Logger
	dispatch func(func())
	key      func(T) string

	backing []T
	visible []T

	filter   queryir.Group
	filterFP string
	test     predicate.Test[T]

	sort queryir.SortSpec
	cmp  ordering.Compare[T]

	dedupe bool

	seq       uint64
	observers []subscription[T]
	nextSub   uint64
}

type subscription[T any] struct {
	id  uint64
	obs Observer[T]
}

// emptyFilterFP is the fingerprint every empty group normalizes to.
var emptyFilterFP, _ = queryir.Group{}.Fingerprint()

// New creates a view over a copy of items with no filter, no sort and
// de-duplication off. The visible sequence starts equal to items.
func New[T any](reg *accessor.Registry[T], items []T, opts ...Option) *View[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}

	v := &View[T]{
		id:       s.ids.Generate(),
		reg:      reg,
		logger:   s.logger,
		dispatch: s.dispatch,
		key:      keyFunc(s, reg.Fingerprint),
		backing:  slices.Clone(items),
		filterFP: emptyFilterFP,
	}
	v.recompute()

	v.logger.Debug("view created",
		"view_id", v.id,
		"backing", len(v.backing))

	return v
}

// ID returns the view's identifier, stamped on every notification.
func (v *View[T]) ID() string { return v.id }

// Registry returns the accessor registry the view compiles against.
func (v *View[T]) Registry() *accessor.Registry[T] { return v.reg }

// Items returns a copy of the visible sequence.
func (v *View[T]) Items() []T { return slices.Clone(v.visible) }

// Len returns the length of the visible sequence.
func (v *View[T]) Len() int { return len(v.visible) }

// Backing returns a copy of the backing sequence in insertion order.
func (v *View[T]) Backing() []T { return slices.Clone(v.backing) }

// Filter returns a copy of the current filter group.
func (v *View[T]) Filter() queryir.Group { return v.filter.Clone() }

// Sort returns a copy of the current sort spec.
func (v *View[T]) Sort() queryir.SortSpec { return slices.Clone(v.sort) }

// Dedupe reports whether de-duplication is on.
func (v *View[T]) Dedupe() bool { return v.dedupe }

// Page returns a copy of the visible records after skipping skip of them,
// at most top records. A negative top means no limit.
func (v *View[T]) Page(skip, top int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(v.visible) {
		return []T{}
	}
	page := v.visible[skip:]
	if top >= 0 && top < len(page) {
		page = page[:top]
	}
	return slices.Clone(page)
}

// ApplyFilter compiles g and makes it the current filter.
//
// A group with the same normalized fingerprint as the current filter is a
// no-op. Otherwise the view recomputes and emits a Reset tagged filter. A
// compile error leaves the view untouched.
func (v *View[T]) ApplyFilter(g queryir.Group) error {
	g = g.Clone()
	test, err := predicate.CompileGroup(v.reg, g)
	if err != nil {
		return err
	}
	fp, err := g.Fingerprint()
	if err != nil {
		return queryir.NewInvalidArgumentError("fingerprint filter: %v", err)
	}
	if fp == v.filterFP {
		v.logger.Debug("filter unchanged",
			"view_id", v.id,
			"fingerprint", fp)
		return nil
	}

	v.filter = g
	v.filterFP = fp
	v.test = test
	v.recompute()
	v.emit(Reset, ReasonFilter, slices.Clone(v.visible))
	return nil
}

// RemoveFilter clears the filter. It is ApplyFilter with the empty group.
func (v *View[T]) RemoveFilter() {
	if v.filterFP == emptyFilterFP {
		return
	}
	v.filter = queryir.Group{}
	v.filterFP = emptyFilterFP
	v.test = nil
	v.recompute()
	v.emit(Reset, ReasonFilter, slices.Clone(v.visible))
}

// ApplySort compiles spec and makes it the current sort.
//
// Every key is checked before the view changes; on error the prior sort
// stays in effect. On success the view recomputes and emits a Reset tagged
// sort.
func (v *View[T]) ApplySort(spec queryir.SortSpec) error {
	cmp, err := ordering.Compile(v.reg, spec)
	if err != nil {
		return err
	}

	v.sort = slices.Clone(spec)
	v.cmp = cmp
	v.recompute()
	v.emit(Reset, ReasonSort, slices.Clone(v.visible))
	return nil
}

// RemoveSort clears the sort so the visible sequence follows backing order.
// It is a no-op when no sort is set.
func (v *View[T]) RemoveSort() {
	if len(v.sort) == 0 {
		return
	}
	v.sort = nil
	v.cmp = nil
	v.recompute()
	v.emit(Reset, ReasonSort, slices.Clone(v.visible))
}

// SetDedupe turns de-duplication on or off. Setting the current value is a
// no-op; a change recomputes and emits a Reset tagged dedupe.
func (v *View[T]) SetDedupe(on bool) {
	if v.dedupe == on {
		return
	}
	v.dedupe = on
	v.recompute()
	v.emit(Reset, ReasonDedupe, slices.Clone(v.visible))
}

// Add appends items to the backing sequence and emits a single Added
// notification carrying all of them.
func (v *View[T]) Add(items ...T) {
	if len(items) == 0 {
		return
	}
	added := slices.Clone(items)
	v.backing = append(v.backing, added...)
	v.recompute()
	v.emit(Added, ReasonItems, added)
}

// Remove deletes one backing occurrence per requested item, matched by value
// equality, and returns the removed records in backing order. Requested items
// with no remaining match are ignored. A Deleted notification is emitted
// when anything was removed.
func (v *View[T]) Remove(items ...T) []T {
	want := make(map[string]int, len(items))
	for _, it := range items {
		want[v.key(it)]++
	}

	return v.removeIf(func(rec T) bool {
		k := v.key(rec)
		if want[k] == 0 {
			return false
		}
		want[k]--
		return true
	})
}

// RemoveAll deletes every backing record and returns them.
func (v *View[T]) RemoveAll() []T {
	return v.removeIf(func(T) bool { return true })
}

// RemoveWhere deletes every backing record matching g and returns them. The
// empty group matches every record. A compile error leaves the view
// untouched.
func (v *View[T]) RemoveWhere(g queryir.Group) ([]T, error) {
	test, err := predicate.CompileGroup(v.reg, g)
	if err != nil {
		return nil, err
	}
	return v.removeIf(func(rec T) bool { return test == nil || test(rec) }), nil
}

func (v *View[T]) removeIf(match func(T) bool) []T {
	var removed []T
	kept := v.backing[:0:0]
	for _, rec := range v.backing {
		if match(rec) {
			removed = append(removed, rec)
			continue
		}
		kept = append(kept, rec)
	}
	if len(removed) == 0 {
		return nil
	}

	v.backing = kept
	v.recompute()
	v.emit(Deleted, ReasonItems, removed)
	return slices.Clone(removed)
}

// Duplicates returns every backing record that has at least one value-equal
// sibling, in backing order. It reads the backing sequence regardless of the
// de-duplication setting.
func (v *View[T]) Duplicates() []T {
	counts := make(map[string]int, len(v.backing))
	keys := make([]string, len(v.backing))
	for i, rec := range v.backing {
		keys[i] = v.key(rec)
		counts[keys[i]]++
	}

	dups := []T{}
	for i, rec := range v.backing {
		if counts[keys[i]] > 1 {
			dups = append(dups, rec)
		}
	}
	return dups
}

// Subscribe registers obs for every later notification and returns a
// function that unsubscribes it.
func (v *View[T]) Subscribe(obs Observer[T]) (cancel func()) {
	v.nextSub++
	id := v.nextSub
	v.observers = append(v.observers, subscription[T]{id: id, obs: obs})

	return func() {
		v.observers = slices.DeleteFunc(v.observers, func(s subscription[T]) bool {
			return s.id == id
		})
	}
}

// recompute derives the visible sequence: backing, then de-duplication, then
// filter, then stable sort.
func (v *View[T]) recompute() {
	rows := v.backing
	if v.dedupe {
		rows = v.distinct(rows)
	}
	rows = predicate.Filter(rows, v.test)
	ordering.Sort(rows, v.cmp)
	v.visible = rows

	v.logger.Debug("view recomputed",
		"view_id", v.id,
		"backing", len(v.backing),
		"visible", len(v.visible),
		"dedupe", v.dedupe,
		"sort_keys", len(v.sort))
}

// distinct keeps the first occurrence of each value-equal record.
func (v *View[T]) distinct(rows []T) []T {
	seen := make(map[string]struct{}, len(rows))
	out := make([]T, 0, len(rows))
	for _, rec := range rows {
		k := v.key(rec)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func (v *View[T]) emit(kind Kind, reason Reason, items []T) {
	v.seq++
	n := Notification[T]{
		Kind:   kind,
		Reason: reason,
		Items:  items,
		Seq:    v.seq,
		ViewID: v.id,
	}

	v.logger.Debug("view notification",
		"view_id", v.id,
		"seq", n.Seq,
		"kind", string(kind),
		"reason", string(reason),
		"items", len(items))

	observers := make([]Observer[T], len(v.observers))
	for i, s := range v.observers {
		observers[i] = s.obs
	}
	deliver := func() {
		for _, obs := range observers {
			obs(n)
		}
	}

	if v.dispatch != nil {
		v.dispatch(deliver)
		return
	}
	deliver()
}
