package predicate

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Test reports whether a record satisfies a compiled predicate.
type Test[T any] func(T) bool

// Compile turns one predicate into a Test over records of T.
//
// Rules:
//   - the property must be registered (UNKNOWN_PROPERTY)
//   - relational operators need an ordered field; text fields are rejected
//     (UNSUPPORTED_OPERATOR_FOR_TYPE)
//   - containment operators need an ordered or text-like field; ordered
//     fields match against their canonical text form
//   - opaque fields support only IsNull and IsNotNull
//   - text comparisons trim and case-fold both sides
//   - EqualTo and NotEqualTo without a literal act as IsNull and IsNotNull
func Compile[T any](reg *accessor.Registry[T], p queryir.Predicate) (Test[T], error) {
	op := p.Operator.Normalize()
	if !op.Known() {
		return nil, &queryir.Error{
			Code:     queryir.ErrCodeNotImplemented,
			Property: p.PropertyName,
			Operator: p.Operator,
			Message:  "unknown operator",
		}
	}
	if op == queryir.OpNone {
		return nil, nil
	}

	f, err := reg.Lookup(p.PropertyName)
	if err != nil {
		return nil, err
	}

	switch op {
	case queryir.OpIsNull:
		return func(rec T) bool { return isNull(f, f.Get(rec)) }, nil
	case queryir.OpIsNotNull:
		return func(rec T) bool { return !isNull(f, f.Get(rec)) }, nil
	}

	if f.Kind == accessor.KindOpaque {
		return nil, unsupported(p.PropertyName, op, f.Kind)
	}

	switch {
	case op == queryir.OpIsEmpty:
		return func(rec T) bool { return isEmpty(f, f.Get(rec)) }, nil
	case op == queryir.OpIsNotEmpty:
		return func(rec T) bool { return !isEmpty(f, f.Get(rec)) }, nil
	case op == queryir.OpEqualTo || op == queryir.OpNotEqualTo:
		return compileEquality(f, p, op)
	case op.IsRelational():
		return compileRelational(f, p, op)
	case op.IsContainment():
		return compileContainment(f, p, op)
	}

	return nil, &queryir.Error{
		Code:     queryir.ErrCodeNotImplemented,
		Property: p.PropertyName,
		Operator: op,
		Message:  "operator has no compiled form",
	}
}

func compileEquality[T any](f accessor.Field[T], p queryir.Predicate, op queryir.Operator) (Test[T], error) {
	negate := op == queryir.OpNotEqualTo

	if ir.IsNull(p.Value) {
		return func(rec T) bool { return isNull(f, f.Get(rec)) != negate }, nil
	}

	lit, err := accessor.Coerce(f.Kind, p.Value)
	if err != nil {
		return nil, withProperty(err, p.PropertyName, op)
	}

	if f.Kind.Textlike() {
		fold := newFolder()
		want := fold(lit.Text())
		return func(rec T) bool {
			v := f.Get(rec)
			if v.IsNull() {
				return negate
			}
			return (fold(v.Text()) == want) != negate
		}, nil
	}

	return func(rec T) bool {
		v := f.Get(rec)
		if v.IsNull() {
			return negate
		}
		return (v.Compare(lit) == 0) != negate
	}, nil
}

func compileRelational[T any](f accessor.Field[T], p queryir.Predicate, op queryir.Operator) (Test[T], error) {
	if !f.Kind.Ordered() {
		return nil, unsupported(p.PropertyName, op, f.Kind)
	}
	if ir.IsNull(p.Value) {
		return nil, &queryir.Error{
			Code:     queryir.ErrCodeInvalidArgument,
			Property: p.PropertyName,
			Operator: op,
			Message:  "operator requires a value",
		}
	}

	lit, err := accessor.Coerce(f.Kind, p.Value)
	if err != nil {
		return nil, withProperty(err, p.PropertyName, op)
	}

	var accept func(c int) bool
	switch op {
	case queryir.OpLessThan:
		accept = func(c int) bool { return c < 0 }
	case queryir.OpLessThanOrEqualTo:
		accept = func(c int) bool { return c <= 0 }
	case queryir.OpGreaterThan:
		accept = func(c int) bool { return c > 0 }
	default:
		accept = func(c int) bool { return c >= 0 }
	}

	return func(rec T) bool {
		v := f.Get(rec)
		if v.IsNull() {
			return false
		}
		return accept(v.Compare(lit))
	}, nil
}

func compileContainment[T any](f accessor.Field[T], p queryir.Predicate, op queryir.Operator) (Test[T], error) {
	if !f.Kind.Sortable() {
		return nil, unsupported(p.PropertyName, op, f.Kind)
	}
	if ir.IsNull(p.Value) {
		return nil, &queryir.Error{
			Code:     queryir.ErrCodeInvalidArgument,
			Property: p.PropertyName,
			Operator: op,
			Message:  "operator requires a value",
		}
	}

	text, err := accessor.LiteralText(p.Value)
	if err != nil {
		return nil, withProperty(err, p.PropertyName, op)
	}
	fold := newFolder()
	want := fold(text)

	negate := op == queryir.OpDoesNotContain
	var match func(s string) bool
	switch op {
	case queryir.OpStartsWith:
		match = func(s string) bool { return strings.HasPrefix(s, want) }
	case queryir.OpEndsWith:
		match = func(s string) bool { return strings.HasSuffix(s, want) }
	case queryir.OpContains:
		match = func(s string) bool { return strings.Contains(s, want) }
	default:
		match = func(s string) bool { return strings.Contains(s, want) }
	}

	// Null and blank values never contain anything, so DoesNotContain holds
	// for them.
	return func(rec T) bool {
		v := f.Get(rec)
		if v.IsNull() {
			return negate
		}
		s := fold(v.Text())
		if s == "" {
			return negate
		}
		return match(s) != negate
	}, nil
}

// isNull treats absence as null on every field, and the zero value as null
// on fields that cannot be absent.
func isNull[T any](f accessor.Field[T], v accessor.Value) bool {
	if v.IsNull() {
		return true
	}
	return !f.Nullable && v.IsZero()
}

func isEmpty[T any](f accessor.Field[T], v accessor.Value) bool {
	if isNull(f, v) {
		return true
	}
	return f.Kind.Textlike() && strings.TrimSpace(v.Text()) == ""
}

// newFolder returns a function that trims and Unicode case-folds text.
// A Caser must not be shared between goroutines, so each compiled test
// gets its own.
func newFolder() func(string) string {
	c := cases.Fold()
	return func(s string) string {
		return c.String(strings.TrimSpace(s))
	}
}

func unsupported(property string, op queryir.Operator, kind accessor.Kind) error {
	return queryir.NewUnsupportedOperatorError(property, op, kind.String())
}

// withProperty stamps the predicate location on a coercion error.
func withProperty(err error, property string, op queryir.Operator) error {
	var qe *queryir.Error
	if errors.As(err, &qe) {
		annotated := *qe
		annotated.Property = property
		annotated.Operator = op
		return &annotated
	}
	return err
}
