// Package ordering compiles sort specifications into comparators.
package ordering

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/queryir"
)

// Compare orders two records: negative when a sorts first, positive when b
// does, zero when they tie on every key.
type Compare[T any] func(a, b T) int

// Compile turns a sort spec into a Compare over records of T.
//
// Every key is resolved and checked before anything is returned, so a bad
// key leaves no partially built comparator. Ordered kinds compare natively.
// Text-like kinds compare with a locale-neutral, case-insensitive collator,
// and exact ties in collation fall back to ordinal order. Nulls sort first
// in ascending order. An empty spec compiles to nil.
//
// The returned Compare is not safe for concurrent use.
func Compile[T any](reg *accessor.Registry[T], spec queryir.SortSpec) (Compare[T], error) {
	if err := queryir.ValidateSort(spec); err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return nil, nil
	}

	var coll *collate.Collator
	keys := make([]Compare[T], 0, len(spec))
	for _, key := range spec {
		f, err := reg.Lookup(key.PropertyName)
		if err != nil {
			return nil, err
		}
		if !f.Kind.Sortable() {
			return nil, queryir.NewNotSortableError(key.PropertyName, f.Kind.String())
		}

		var byValue func(a, b accessor.Value) int
		if f.Kind.Textlike() {
			if coll == nil {
				coll = collate.New(language.Und, collate.IgnoreCase)
			}
			byValue = textComparer(coll)
		} else {
			byValue = func(a, b accessor.Value) int { return a.Compare(b) }
		}

		keys = append(keys, keyComparer(f, byValue, key.Direction.Normalize() == queryir.Descending))
	}

	return func(a, b T) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return 0
	}, nil
}

func keyComparer[T any](f accessor.Field[T], byValue func(a, b accessor.Value) int, desc bool) Compare[T] {
	return func(a, b T) int {
		c := compareNullsFirst(f.Get(a), f.Get(b), byValue)
		if desc {
			return -c
		}
		return c
	}
}

func compareNullsFirst(a, b accessor.Value, byValue func(a, b accessor.Value) int) int {
	switch an, bn := a.IsNull(), b.IsNull(); {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	return byValue(a, b)
}

func textComparer(coll *collate.Collator) func(a, b accessor.Value) int {
	return func(a, b accessor.Value) int {
		as, bs := a.Text(), b.Text()
		if c := coll.CompareString(as, bs); c != 0 {
			return c
		}
		return strings.Compare(as, bs)
	}
}

// Sort orders items in place with cmp. Records that tie keep their relative
// order. A nil cmp leaves items untouched.
func Sort[T any](items []T, cmp Compare[T]) {
	if cmp == nil {
		return
	}
	slices.SortStableFunc(items, cmp)
}
