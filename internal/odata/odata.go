package odata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/ordering"
	"github.com/roach88/sieve/internal/predicate"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/view"
)

// Option is one textual query option, e.g. {"$orderby", "Age desc"}.
type Option struct {
	Option string `json:"option" yaml:"option"`
	Query  string `json:"query" yaml:"query"`
}

// Query is the parsed form of a list of options.
//
// Skip and Top paginate the already filtered and sorted sequence; they are
// not part of the view state. Top is -1 when no $top was given.
type Query struct {
	Filter queryir.Group
	Sort   queryir.SortSpec
	Skip   int
	Top    int
}

// Parse consumes options in order. Multiple $orderby options append keys;
// a later $filter, $skip or $top replaces an earlier one. Unknown options
// are ignored.
func Parse(opts []Option) (Query, error) {
	q := Query{Top: -1}

	for _, opt := range opts {
		name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(opt.Option), "$"))
		switch name {
		case "filter":
			g, err := ParseFilter(opt.Query)
			if err != nil {
				return Query{}, err
			}
			q.Filter = g
		case "orderby":
			keys, err := ParseOrderBy(opt.Query)
			if err != nil {
				return Query{}, err
			}
			q.Sort = append(q.Sort, keys...)
		case "skip":
			n, err := parseCount(opt)
			if err != nil {
				return Query{}, err
			}
			q.Skip = n
		case "top":
			n, err := parseCount(opt)
			if err != nil {
				return Query{}, err
			}
			q.Top = n
		}
	}

	return q, nil
}

func parseCount(opt Option) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(opt.Query))
	if err != nil || n < 0 {
		return 0, queryir.NewInvalidArgumentError("%s: expected a non-negative integer, got %q", opt.Option, opt.Query)
	}
	return n, nil
}

// ParseOrderBy parses a comma-separated $orderby clause.
//
// Each item is a property name optionally followed by asc or desc. An item
// without a direction takes the next explicit direction to its right, so
// "a,b desc" sorts both keys descending; items after the last direction are
// ascending. Dotted names address nested records.
func ParseOrderBy(s string) (queryir.SortSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var spec queryir.SortSpec
	pending := 0
	for i, item := range strings.Split(s, ",") {
		fields := strings.Fields(item)
		switch len(fields) {
		case 1:
			spec = append(spec, queryir.SortKey{PropertyName: fields[0]})
			pending++
		case 2:
			dir, err := parseDirection(fields[1])
			if err != nil {
				return nil, fmt.Errorf("$orderby item %d: %w", i, err)
			}
			spec = append(spec, queryir.SortKey{PropertyName: fields[0]})
			for j := len(spec) - pending - 1; j < len(spec); j++ {
				spec[j].Direction = dir
			}
			pending = 0
		default:
			return nil, queryir.NewInvalidArgumentError("$orderby item %d: expected \"property [asc|desc]\", got %q", i, strings.TrimSpace(item))
		}
	}

	for j := len(spec) - pending; j < len(spec); j++ {
		spec[j].Direction = queryir.Ascending
	}
	return spec, nil
}

func parseDirection(tok string) (queryir.Direction, error) {
	switch strings.ToLower(tok) {
	case "asc":
		return queryir.Ascending, nil
	case "desc":
		return queryir.Descending, nil
	}
	return "", queryir.NewInvalidArgumentError("unknown direction %q", tok)
}

// Apply makes q the view's filter and sort and returns the requested page.
//
// Both parts are compiled against the view's registry before the view is
// touched, so a bad query leaves the view unchanged. An empty sort removes
// any sort in effect.
func Apply[T any](v *view.View[T], q Query) ([]T, error) {
	if _, err := predicate.CompileGroup(v.Registry(), q.Filter); err != nil {
		return nil, err
	}
	if _, err := ordering.Compile(v.Registry(), q.Sort); err != nil {
		return nil, err
	}

	if err := v.ApplyFilter(q.Filter); err != nil {
		return nil, err
	}
	if len(q.Sort) == 0 {
		v.RemoveSort()
	} else if err := v.ApplySort(q.Sort); err != nil {
		return nil, err
	}

	return v.Page(q.Skip, q.Top), nil
}
