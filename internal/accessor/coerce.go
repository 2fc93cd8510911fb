package accessor

import (
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// DateLayout is accepted alongside RFC 3339 for time literals.
const DateLayout = "2006-01-02"

// Coerce converts a literal to a Value of kind k.
//
// Text literals are trimmed. Numbers, booleans and times may be given as
// strings and are parsed. A missing literal yields Null(k). Anything that
// does not convert fails with INVALID_ARGUMENT.
func Coerce(k Kind, lit ir.IRValue) (Value, error) {
	if ir.IsNull(lit) {
		return Null(k), nil
	}

	switch k {
	case KindText, KindTextual:
		s, ok := literalText(lit)
		if !ok {
			return Value{}, mismatch(k, lit)
		}
		s = strings.TrimSpace(s)
		if k == KindTextual {
			return TextualValue(s), nil
		}
		return TextValue(s), nil

	case KindInt:
		switch v := lit.(type) {
		case ir.IRInt:
			return IntValue(int64(v)), nil
		case ir.IRString:
			i, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
			if err != nil {
				return Value{}, mismatch(k, lit)
			}
			return IntValue(i), nil
		}

	case KindFloat:
		switch v := lit.(type) {
		case ir.IRInt:
			return FloatValue(float64(v)), nil
		case ir.IRString:
			f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
			if err != nil {
				return Value{}, mismatch(k, lit)
			}
			return FloatValue(f), nil
		}

	case KindBool:
		switch v := lit.(type) {
		case ir.IRBool:
			return BoolValue(bool(v)), nil
		case ir.IRString:
			b, err := strconv.ParseBool(strings.TrimSpace(string(v)))
			if err != nil {
				return Value{}, mismatch(k, lit)
			}
			return BoolValue(b), nil
		}

	case KindTime:
		if v, ok := lit.(ir.IRString); ok {
			t, err := ParseTime(string(v))
			if err != nil {
				return Value{}, mismatch(k, lit)
			}
			return TimeValue(t), nil
		}
	}

	return Value{}, mismatch(k, lit)
}

// ParseTime accepts RFC 3339 timestamps and plain dates. Dates are midnight UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(DateLayout, s)
}

// literalText renders scalar literals as text.
func literalText(lit ir.IRValue) (string, bool) {
	switch v := lit.(type) {
	case ir.IRString:
		return string(v), true
	case ir.IRInt:
		return strconv.FormatInt(int64(v), 10), true
	case ir.IRBool:
		return strconv.FormatBool(bool(v)), true
	}
	return "", false
}

// LiteralText returns the text form of a scalar literal. Containment
// operators match against this form on every field kind.
func LiteralText(lit ir.IRValue) (string, error) {
	s, ok := literalText(lit)
	if !ok {
		return "", queryir.NewInvalidArgumentError("literal %s has no text form", describe(lit))
	}
	return strings.TrimSpace(s), nil
}

func mismatch(k Kind, lit ir.IRValue) error {
	return queryir.NewInvalidArgumentError("cannot use literal %s as %s", describe(lit), k)
}

func describe(lit ir.IRValue) string {
	b, err := ir.MarshalIRValue(lit)
	if err != nil {
		return "<unencodable>"
	}
	return string(b)
}
