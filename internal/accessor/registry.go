package accessor

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
)

// Field is a named, typed getter over records of type T.
type Field[T any] struct {
	Name     string
	Kind     Kind
	Nullable bool
	get      func(T) Value
}

// Get reads the field from rec.
func (f Field[T]) Get(rec T) Value {
	return f.get(rec)
}

// embedded is a nested registry reached through a getter on the parent.
type embedded[T any] struct {
	lookup    func(path string) (Field[T], error)
	canonical func(T) ir.IRValue
}

// Registry maps property names to fields of T.
//
// Registration happens once, normally at package init, and panics on
// duplicate or malformed names. Lookups are read-only and safe for
// concurrent use once registration is complete.
type Registry[T any] struct {
	fields map[string]Field[T]
	embeds map[string]embedded[T]
	order  []string
}

// NewRegistry creates an empty registry for T.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		fields: make(map[string]Field[T]),
		embeds: make(map[string]embedded[T]),
	}
}

func (r *Registry[T]) claim(name string) {
	if name == "" || strings.Contains(name, ".") {
		panic(fmt.Sprintf("accessor: invalid field name %q", name))
	}
	if _, ok := r.fields[name]; ok {
		panic(fmt.Sprintf("accessor: field %q registered twice", name))
	}
	if _, ok := r.embeds[name]; ok {
		panic(fmt.Sprintf("accessor: field %q registered twice", name))
	}
	r.order = append(r.order, name)
}

func (r *Registry[T]) add(name string, kind Kind, nullable bool, get func(T) Value) *Registry[T] {
	r.claim(name)
	r.fields[name] = Field[T]{Name: name, Kind: kind, Nullable: nullable, get: get}
	return r
}

// Text registers a string field.
func (r *Registry[T]) Text(name string, get func(T) string) *Registry[T] {
	return r.add(name, KindText, false, func(rec T) Value { return TextValue(get(rec)) })
}

// NullableText registers a string field that may be absent.
func (r *Registry[T]) NullableText(name string, get func(T) (string, bool)) *Registry[T] {
	return r.add(name, KindText, true, func(rec T) Value {
		if s, ok := get(rec); ok {
			return TextValue(s)
		}
		return Null(KindText)
	})
}

// Textual registers a field that has no native order but converts to text.
// The getter returns false when the value is absent.
func (r *Registry[T]) Textual(name string, get func(T) (string, bool)) *Registry[T] {
	return r.add(name, KindTextual, true, func(rec T) Value {
		if s, ok := get(rec); ok {
			return TextualValue(s)
		}
		return Null(KindTextual)
	})
}

// Int registers an integer field.
func (r *Registry[T]) Int(name string, get func(T) int64) *Registry[T] {
	return r.add(name, KindInt, false, func(rec T) Value { return IntValue(get(rec)) })
}

// NullableInt registers an integer field that may be absent.
func (r *Registry[T]) NullableInt(name string, get func(T) (int64, bool)) *Registry[T] {
	return r.add(name, KindInt, true, func(rec T) Value {
		if i, ok := get(rec); ok {
			return IntValue(i)
		}
		return Null(KindInt)
	})
}

// Float registers a floating point field.
func (r *Registry[T]) Float(name string, get func(T) float64) *Registry[T] {
	return r.add(name, KindFloat, false, func(rec T) Value { return FloatValue(get(rec)) })
}

// NullableFloat registers a floating point field that may be absent.
func (r *Registry[T]) NullableFloat(name string, get func(T) (float64, bool)) *Registry[T] {
	return r.add(name, KindFloat, true, func(rec T) Value {
		if f, ok := get(rec); ok {
			return FloatValue(f)
		}
		return Null(KindFloat)
	})
}

// Bool registers a boolean field.
func (r *Registry[T]) Bool(name string, get func(T) bool) *Registry[T] {
	return r.add(name, KindBool, false, func(rec T) Value { return BoolValue(get(rec)) })
}

// NullableBool registers a boolean field that may be absent.
func (r *Registry[T]) NullableBool(name string, get func(T) (bool, bool)) *Registry[T] {
	return r.add(name, KindBool, true, func(rec T) Value {
		if b, ok := get(rec); ok {
			return BoolValue(b)
		}
		return Null(KindBool)
	})
}

// Time registers a timestamp field.
func (r *Registry[T]) Time(name string, get func(T) time.Time) *Registry[T] {
	return r.add(name, KindTime, false, func(rec T) Value { return TimeValue(get(rec)) })
}

// NullableTime registers a timestamp field that may be absent.
func (r *Registry[T]) NullableTime(name string, get func(T) (time.Time, bool)) *Registry[T] {
	return r.add(name, KindTime, true, func(rec T) Value {
		if t, ok := get(rec); ok {
			return TimeValue(t)
		}
		return Null(KindTime)
	})
}

// Opaque registers a field that supports only null tests.
func (r *Registry[T]) Opaque(name string, get func(T) any) *Registry[T] {
	return r.add(name, KindOpaque, true, func(rec T) Value { return OpaqueValue(get(rec)) })
}

// Embed attaches the registry of a nested record under name. Dotted property
// names whose first segment is name resolve through sub. When get reports
// false the nested record is missing and every field below it reads as null.
func Embed[T, R any](r *Registry[T], name string, get func(T) (R, bool), sub *Registry[R]) *Registry[T] {
	r.claim(name)
	r.embeds[name] = embedded[T]{
		lookup: func(path string) (Field[T], error) {
			inner, err := sub.Lookup(path)
			if err != nil {
				return Field[T]{}, err
			}
			return Field[T]{
				Name:     name + "." + inner.Name,
				Kind:     inner.Kind,
				Nullable: inner.Nullable,
				get: func(rec T) Value {
					nested, ok := get(rec)
					if !ok {
						return Null(inner.Kind)
					}
					return inner.Get(nested)
				},
			}, nil
		},
		canonical: func(rec T) ir.IRValue {
			nested, ok := get(rec)
			if !ok {
				return ir.IRNull{}
			}
			return sub.Canonical(nested)
		},
	}
	return r
}

// Lookup resolves a property name, following dotted paths through embedded
// registries. Unresolvable names fail with an UNKNOWN_PROPERTY error carrying
// the full name.
func (r *Registry[T]) Lookup(name string) (Field[T], error) {
	head, rest, nested := strings.Cut(name, ".")
	if !nested {
		if f, ok := r.fields[name]; ok {
			return f, nil
		}
		return Field[T]{}, queryir.NewUnknownPropertyError(name)
	}

	e, ok := r.embeds[head]
	if !ok {
		return Field[T]{}, queryir.NewUnknownPropertyError(name)
	}
	f, err := e.lookup(rest)
	if err != nil {
		return Field[T]{}, queryir.NewUnknownPropertyError(name)
	}
	return f, nil
}

// Names lists top-level names in registration order. Embedded records are
// listed by their own name.
func (r *Registry[T]) Names() []string {
	return append([]string(nil), r.order...)
}

// Canonical returns the IR form of every registered field of rec. Embedded
// records appear as nested objects, or null when missing.
func (r *Registry[T]) Canonical(rec T) ir.IRObject {
	obj := make(ir.IRObject, len(r.order))
	for _, name := range r.order {
		if f, ok := r.fields[name]; ok {
			obj[name] = f.Get(rec).IR()
			continue
		}
		obj[name] = r.embeds[name].canonical(rec)
	}
	return obj
}

// Fingerprint hashes the exact encoding of rec's canonical form. Records
// share a fingerprint only when every field holds identical bytes; text is
// not normalized.
func (r *Registry[T]) Fingerprint(rec T) string {
	return ir.MustExactFingerprint(ir.DomainRecord, r.Canonical(rec))
}
