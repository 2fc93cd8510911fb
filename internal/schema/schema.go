// Package schema describes dynamic record types in CUE.
//
// A schema file declares the fields of a record:
//
//	fields: {
//		Name:   string
//		Age:    int
//		Score:  number | null
//		Joined: "time"
//		Address: null | {
//			City: string
//		}
//	}
//
// Plain CUE types map to field kinds (string, int, number or float, bool).
// The concrete strings "text", "textual", "int", "float", "bool", "time" and
// "opaque" name a kind directly. A "| null" alternative makes the field
// nullable, and a struct declares a nested record reachable by dotted paths.
//
// Records themselves are plain maps, so data loaded from YAML, JSON or SQL
// can be filtered and sorted without generating Go types.
package schema

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/sieve/internal/accessor"
)

// Record is one dynamic record. Values are normalized by Decode to string,
// int64, float64, bool, time.Time, nested Record, or any for opaque fields.
// A missing key is an absent value.
type Record map[string]any

// Field is one declared field.
type Field struct {
	Name     string
	Kind     accessor.Kind
	Nullable bool

	// Nested is set for embedded records.
	Nested *Schema
}

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field

	reg *accessor.Registry[Record]
}

var tags = map[string]accessor.Kind{
	"text":    accessor.KindText,
	"textual": accessor.KindTextual,
	"int":     accessor.KindInt,
	"float":   accessor.KindFloat,
	"bool":    accessor.KindBool,
	"time":    accessor.KindTime,
	"opaque":  accessor.KindOpaque,
}

// Load reads and compiles a CUE schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(v)
}

// Compile builds a Schema from a CUE value holding a "fields" struct.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   "fields",
			Message: "fields is required",
			Pos:     v.Pos(),
		}
	}

	s, err := compileFields(fieldsVal, "fields")
	if err != nil {
		return nil, err
	}
	s.buildRegistry()
	return s, nil
}

func compileFields(v cue.Value, path string) (*Schema, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{}
	for iter.Next() {
		name := iter.Label()
		f, err := compileField(name, iter.Value(), path+"."+name)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, f)
	}

	if len(s.Fields) == 0 {
		return nil, &CompileError{
			Field:   path,
			Message: "at least one field is required",
			Pos:     v.Pos(),
		}
	}
	return s, nil
}

func compileField(name string, v cue.Value, path string) (Field, error) {
	f := Field{Name: name}

	base := v
	if op, args := v.Expr(); op == cue.OrOp {
		var rest []cue.Value
		for _, arg := range args {
			if arg.IncompleteKind() == cue.NullKind {
				f.Nullable = true
				continue
			}
			rest = append(rest, arg)
		}
		if len(rest) != 1 {
			return Field{}, &CompileError{
				Field:   path,
				Message: "only a single type or a type | null is supported",
				Pos:     v.Pos(),
			}
		}
		base = rest[0]
	}

	kind := base.IncompleteKind()
	switch {
	case kind == cue.StringKind && base.IsConcrete():
		tag, err := base.String()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
		k, ok := tags[tag]
		if !ok {
			return Field{}, &CompileError{
				Field:   path,
				Message: fmt.Sprintf("unknown kind %q", tag),
				Pos:     base.Pos(),
			}
		}
		f.Kind = k
	case kind == cue.StringKind:
		f.Kind = accessor.KindText
	case kind == cue.IntKind:
		f.Kind = accessor.KindInt
	case kind == cue.FloatKind, kind == cue.NumberKind:
		f.Kind = accessor.KindFloat
	case kind == cue.BoolKind:
		f.Kind = accessor.KindBool
	case kind == cue.StructKind:
		nested, err := compileFields(base, path)
		if err != nil {
			return Field{}, err
		}
		nested.buildRegistry()
		f.Nested = nested
		f.Nullable = true
	case kind == cue.ListKind, kind == cue.TopKind:
		f.Kind = accessor.KindOpaque
		f.Nullable = true
	default:
		return Field{}, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unsupported type kind: %v", kind),
			Pos:     base.Pos(),
		}
	}

	return f, nil
}

// Field returns the declared field called name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry returns the accessor registry for records of this schema.
func (s *Schema) Registry() *accessor.Registry[Record] {
	return s.reg
}

func (s *Schema) buildRegistry() {
	reg := accessor.NewRegistry[Record]()
	for _, f := range s.Fields {
		register(reg, f)
	}
	s.reg = reg
}

func register(reg *accessor.Registry[Record], f Field) {
	name := f.Name

	if f.Nested != nil {
		accessor.Embed(reg, name, func(r Record) (Record, bool) {
			nested, ok := r[name].(Record)
			return nested, ok
		}, f.Nested.Registry())
		return
	}

	switch f.Kind {
	case accessor.KindText:
		if f.Nullable {
			reg.NullableText(name, func(r Record) (string, bool) { return get[string](r, name) })
		} else {
			reg.Text(name, func(r Record) string { return must[string](r, name) })
		}
	case accessor.KindTextual:
		reg.Textual(name, func(r Record) (string, bool) { return get[string](r, name) })
	case accessor.KindInt:
		if f.Nullable {
			reg.NullableInt(name, func(r Record) (int64, bool) { return get[int64](r, name) })
		} else {
			reg.Int(name, func(r Record) int64 { return must[int64](r, name) })
		}
	case accessor.KindFloat:
		if f.Nullable {
			reg.NullableFloat(name, func(r Record) (float64, bool) { return get[float64](r, name) })
		} else {
			reg.Float(name, func(r Record) float64 { return must[float64](r, name) })
		}
	case accessor.KindBool:
		if f.Nullable {
			reg.NullableBool(name, func(r Record) (bool, bool) { return get[bool](r, name) })
		} else {
			reg.Bool(name, func(r Record) bool { return must[bool](r, name) })
		}
	case accessor.KindTime:
		if f.Nullable {
			reg.NullableTime(name, func(r Record) (time.Time, bool) { return get[time.Time](r, name) })
		} else {
			reg.Time(name, func(r Record) time.Time { return must[time.Time](r, name) })
		}
	case accessor.KindOpaque:
		reg.Opaque(name, func(r Record) any { return r[name] })
	}
}

func get[V any](r Record, name string) (V, bool) {
	v, ok := r[name].(V)
	return v, ok
}

func must[V any](r Record, name string) V {
	v, _ := r[name].(V)
	return v
}
