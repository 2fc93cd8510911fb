package schema

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/roach88/sieve/internal/accessor"
)

// Decode normalizes a raw map, as produced by a YAML, JSON or SQL decoder,
// into a Record of this schema.
//
// Keys not declared in the schema are rejected. Null and missing values are
// left absent. Integers may arrive as any Go integer type or as an integral
// float64; times may arrive as time.Time or as RFC 3339 or date strings.
func (s *Schema) Decode(raw map[string]any) (Record, error) {
	for _, key := range sortedKeys(raw) {
		if _, ok := s.Field(key); !ok {
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}

	rec := make(Record, len(raw))
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		nv, err := f.normalize(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		rec[f.Name] = nv
	}
	return rec, nil
}

// DecodeAll decodes every raw map, reporting the index of the first failure.
func (s *Schema) DecodeAll(raws []map[string]any) ([]Record, error) {
	recs := make([]Record, 0, len(raws))
	for i, raw := range raws {
		rec, err := s.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (f Field) normalize(v any) (any, error) {
	if f.Nested != nil {
		switch m := v.(type) {
		case Record:
			return f.Nested.Decode(m)
		case map[string]any:
			return f.Nested.Decode(m)
		}
		return nil, fmt.Errorf("expected a nested record, got %T", v)
	}

	switch f.Kind {
	case accessor.KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case accessor.KindTextual:
		switch val := v.(type) {
		case string:
			return val, nil
		case []byte:
			return string(val), nil
		case fmt.Stringer:
			return val.String(), nil
		}
		return fmt.Sprint(v), nil
	case accessor.KindInt:
		if i, ok := toInt(v); ok {
			return i, nil
		}
	case accessor.KindFloat:
		if fl, ok := toFloat(v); ok {
			return fl, nil
		}
	case accessor.KindBool:
		switch val := v.(type) {
		case bool:
			return val, nil
		case int64:
			// SQLite stores booleans as 0 or 1.
			if val == 0 || val == 1 {
				return val == 1, nil
			}
		}
	case accessor.KindTime:
		switch val := v.(type) {
		case time.Time:
			return val, nil
		case string:
			t, err := accessor.ParseTime(val)
			if err != nil {
				return nil, fmt.Errorf("invalid time %q", val)
			}
			return t, nil
		}
	case accessor.KindOpaque:
		return v, nil
	}

	return nil, fmt.Errorf("expected %s, got %T", f.Kind, v)
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), true
		}
	case float64:
		if n == math.Trunc(n) && math.Abs(n) <= 1<<53 {
			return int64(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
