package accessor

import (
	"cmp"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/sieve/internal/ir"
)

// Value is a field value read from a record.
//
// The zero Value is an invalid null. Use the constructors to build values of
// a specific kind.
type Value struct {
	kind Kind
	null bool
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
	a    any
}

// Null returns the null value of kind k.
func Null(k Kind) Value { return Value{kind: k, null: true} }

// TextValue wraps a string field value.
func TextValue(s string) Value { return Value{kind: KindText, s: s} }

// TextualValue wraps the text form of a value that is only convertible to text.
func TextualValue(s string) Value { return Value{kind: KindTextual, s: s} }

// IntValue wraps an integer field value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a floating point field value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue wraps a boolean field value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue wraps a timestamp field value.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// OpaqueValue wraps a value that is neither ordered nor textual.
// A nil v is null.
func OpaqueValue(v any) Value {
	if v == nil {
		return Null(KindOpaque)
	}
	return Value{kind: KindOpaque, a: v}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.null || v.kind == KindInvalid }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool { return v.b }
func (v Value) Time() time.Time { return v.t }
func (v Value) Interface() any { return v.a }

// IsZero reports whether v holds the zero value of its kind.
// Null values are not zero.
func (v Value) IsZero() bool {
	if v.IsNull() {
		return false
	}
	switch v.kind {
	case KindText, KindTextual:
		return v.s == ""
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	case KindBool:
		return !v.b
	case KindTime:
		return v.t.IsZero()
	}
	return false
}

// Text returns the canonical text form of v. Null values have no text form
// and return "".
func (v Value) Text() string {
	if v.IsNull() {
		return ""
	}
	switch v.kind {
	case KindText, KindTextual:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v.a)
	}
}

// Compare orders two non-null values of the same ordered kind.
// Text kinds compare ordinally; callers that need collation compare Text().
func (v Value) Compare(o Value) int {
	switch v.kind {
	case KindInt:
		return cmp.Compare(v.i, o.i)
	case KindFloat:
		return cmp.Compare(v.f, o.f)
	case KindBool:
		return compareBool(v.b, o.b)
	case KindTime:
		return v.t.Compare(o.t)
	default:
		return cmp.Compare(v.Text(), o.Text())
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// IR converts v into a literal for canonical encoding. Floats and times are
// carried as their text form since the literal set has no float variant.
func (v Value) IR() ir.IRValue {
	if v.IsNull() {
		return ir.IRNull{}
	}
	switch v.kind {
	case KindInt:
		return ir.IRInt(v.i)
	case KindBool:
		return ir.IRBool(v.b)
	default:
		return ir.IRString(v.Text())
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "null"
	}
	return v.Text()
}
