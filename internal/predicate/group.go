package predicate

import (
	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/queryir"
)

// CompileGroup turns a filter group into a single Test.
//
// Direct predicates are folded left to right with the group's logic into a
// left aggregate, subgroups are compiled and folded the same way into a
// right aggregate, and the two are joined with the same logic. Whichever
// side is missing drops out; when both are missing the result is nil.
//
// The group is validated first, so nesting deeper than queryir.MaxDepth and
// None groups with children are rejected before compilation recurses.
func CompileGroup[T any](reg *accessor.Registry[T], g queryir.Group) (Test[T], error) {
	if err := queryir.Validate(g); err != nil {
		return nil, err
	}
	return compileBranch(reg, g.Tree())
}

func compileBranch[T any](reg *accessor.Registry[T], b queryir.Branch) (Test[T], error) {
	var left, right Test[T]

	for _, child := range b.Children {
		switch n := child.(type) {
		case queryir.Leaf:
			test, err := Compile(reg, n.Predicate)
			if err != nil {
				return nil, err
			}
			left = combine(b.Logic, left, test)
		case queryir.Branch:
			test, err := compileBranch(reg, n)
			if err != nil {
				return nil, err
			}
			right = combine(b.Logic, right, test)
		}
	}

	return combine(b.Logic, left, right), nil
}

// combine joins two tests with logic. A nil side contributes nothing.
func combine[T any](logic queryir.Logic, a, b Test[T]) Test[T] {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case logic == queryir.LogicOr:
		return func(rec T) bool { return a(rec) || b(rec) }
	default:
		return func(rec T) bool { return a(rec) && b(rec) }
	}
}

// Filter returns the records of items that pass test, in order.
// A nil test passes everything.
func Filter[T any](items []T, test Test[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if test == nil || test(it) {
			out = append(out, it)
		}
	}
	return out
}
