package source

import (
	"fmt"
	"strings"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
)

var sqlComparisons = map[queryir.Operator]string{
	queryir.OpEqualTo:              "=",
	queryir.OpLessThan:             "<",
	queryir.OpLessThanOrEqualTo:    "<=",
	queryir.OpGreaterThan:          ">",
	queryir.OpGreaterThanOrEqualTo: ">=",
}

// compileWhere builds a WHERE fragment that keeps every row the group could
// match, possibly more. Only direct predicates of an And group on numeric and
// boolean columns are pushed down; everything else is left to the in-memory
// filter. Returns "" when nothing can be pushed down.
//
// Values are never interpolated; every literal is a ? parameter.
func compileWhere(s *schema.Schema, g queryir.Group) (string, []any, error) {
	if g.Operator.Normalize() != queryir.LogicAnd {
		return "", nil, nil
	}

	var parts []string
	var params []any
	for _, p := range g.Predicates {
		sqlOp, ok := sqlComparisons[p.Operator.Normalize()]
		if !ok || p.Value == nil {
			continue
		}
		f, ok := s.Field(p.PropertyName)
		if !ok || f.Nested != nil {
			continue
		}

		var zero any
		switch f.Kind {
		case accessor.KindInt:
			zero = int64(0)
		case accessor.KindFloat:
			zero = float64(0)
		case accessor.KindBool:
			zero = false
		default:
			continue
		}

		lit, err := accessor.Coerce(f.Kind, p.Value)
		if err != nil {
			return "", nil, fmt.Errorf("push down %s: %w", p.PropertyName, err)
		}
		if lit.IsNull() {
			continue
		}

		// A missing value of a non-nullable field reads as its zero value.
		col := quoteIdent(f.Name)
		if !f.Nullable {
			col = fmt.Sprintf("COALESCE(%s, ?)", col)
			params = append(params, zero)
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", col, sqlOp))
		params = append(params, sqlParam(lit))
	}

	return strings.Join(parts, " AND "), params, nil
}

func sqlParam(v accessor.Value) any {
	switch v.Kind() {
	case accessor.KindInt:
		return v.Int()
	case accessor.KindFloat:
		return v.Float()
	case accessor.KindBool:
		return v.Bool()
	}
	return v.Text()
}

// quoteIdent quotes a column or table name for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
