package queryir

import "fmt"

// MaxDepth bounds group nesting. Deeper trees are rejected before any
// recursive compilation happens.
const MaxDepth = 64

// Validate checks the structure of a filter group without resolving
// property names.
//
// Rules:
//  1. Nesting depth is at most MaxDepth (INVALID_ARGUMENT)
//  2. Logic is None, And or Or (NOT_IMPLEMENTED)
//  3. A None group has no children (NOT_IMPLEMENTED)
//  4. Every operator is known (NOT_IMPLEMENTED)
//  5. Every non-None predicate names a property (INVALID_ARGUMENT)
//
// The traversal uses an explicit stack, so adversarially deep input cannot
// exhaust the goroutine stack.
//
// Validate is a pure function with no side effects.
func Validate(g Group) error {
	type frame struct {
		group Group
		path  string
		depth int
	}

	stack := []frame{{group: g, path: "filter", depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > MaxDepth {
			return NewInvalidArgumentError("%s: group nesting exceeds %d levels", f.path, MaxDepth)
		}

		switch f.group.Operator.Normalize() {
		case LogicAnd, LogicOr:
		case LogicNone:
			if !f.group.IsEmpty() {
				return NewNotImplementedError("%s: group operator None cannot combine %d predicate(s) and %d subgroup(s)",
					f.path, len(f.group.Predicates), len(f.group.SubGroups))
			}
		default:
			return NewNotImplementedError("%s: unknown group operator %q", f.path, f.group.Operator)
		}

		for i, p := range f.group.Predicates {
			if err := validatePredicate(p, fmt.Sprintf("%s.filters[%d]", f.path, i)); err != nil {
				return err
			}
		}

		// Push in reverse so subgroups are reported in declaration order.
		for i := len(f.group.SubGroups) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				group: f.group.SubGroups[i],
				path:  fmt.Sprintf("%s.subGroups[%d]", f.path, i),
				depth: f.depth + 1,
			})
		}
	}

	return nil
}

func validatePredicate(p Predicate, path string) error {
	if !p.Operator.Known() {
		return &Error{
			Code:     ErrCodeNotImplemented,
			Property: p.PropertyName,
			Operator: p.Operator,
			Message:  fmt.Sprintf("%s: unknown operator", path),
		}
	}
	if p.Operator.Normalize() != OpNone && p.PropertyName == "" {
		return NewInvalidArgumentError("%s: property name is required", path)
	}
	return nil
}

// ValidateSort checks that every key names a property and uses a known
// direction. Whether the property is sortable depends on the record type and
// is checked by the comparator.
func ValidateSort(spec SortSpec) error {
	for i, key := range spec {
		if key.PropertyName == "" {
			return NewInvalidArgumentError("sort[%d]: property name is required", i)
		}
		switch key.Direction.Normalize() {
		case Ascending, Descending:
		default:
			return &Error{
				Code:     ErrCodeInvalidArgument,
				Property: key.PropertyName,
				Message:  fmt.Sprintf("sort[%d]: unknown direction %q", i, key.Direction),
			}
		}
	}
	return nil
}
