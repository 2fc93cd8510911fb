package odata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/predicate"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/testutil"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  queryir.Group
	}{
		{
			name:  "blank",
			input: "   ",
			want:  queryir.Group{},
		},
		{
			name:  "comparison",
			input: "Age ge 30",
			want:  queryir.And(queryir.Where("Age", queryir.OpGreaterThanOrEqualTo, ir.IRInt(30))),
		},
		{
			name:  "string with escaped quote",
			input: "Name eq 'O''Brien'",
			want:  queryir.And(queryir.Where("Name", queryir.OpEqualTo, ir.IRString("O'Brien"))),
		},
		{
			name:  "decimal travels as text",
			input: "Score lt 7.5",
			want:  queryir.And(queryir.Where("Score", queryir.OpLessThan, ir.IRString("7.5"))),
		},
		{
			name:  "negative integer",
			input: "Age gt -1",
			want:  queryir.And(queryir.Where("Age", queryir.OpGreaterThan, ir.IRInt(-1))),
		},
		{
			name:  "booleans",
			input: "Active eq true",
			want:  queryir.And(queryir.Where("Active", queryir.OpEqualTo, ir.IRBool(true))),
		},
		{
			name:  "eq null",
			input: "Nickname eq null",
			want:  queryir.And(queryir.Where("Nickname", queryir.OpIsNull, nil)),
		},
		{
			name:  "ne null",
			input: "Nickname NE NULL",
			want:  queryir.And(queryir.Where("Nickname", queryir.OpIsNotNull, nil)),
		},
		{
			name:  "functions",
			input: "startswith(Name,'a') and endswith(Name, 'n') and isempty(Nickname)",
			want: queryir.And(
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("a")),
				queryir.Where("Name", queryir.OpEndsWith, ir.IRString("n")),
				queryir.Where("Nickname", queryir.OpIsEmpty, nil),
			),
		},
		{
			name:  "negated functions",
			input: "not contains(Name,'x') and not isempty(Nickname)",
			want: queryir.And(
				queryir.Where("Name", queryir.OpDoesNotContain, ir.IRString("x")),
				queryir.Where("Nickname", queryir.OpIsNotEmpty, nil),
			),
		},
		{
			name:  "and binds tighter than or",
			input: "Age eq 1 or Age eq 2 and Name eq 'b'",
			want: queryir.Group{
				Operator:   queryir.LogicOr,
				Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(1))},
				SubGroups: []queryir.Group{queryir.And(
					queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(2)),
					queryir.Where("Name", queryir.OpEqualTo, ir.IRString("b")),
				)},
			},
		},
		{
			name:  "parentheses",
			input: "Age eq 25 and (startswith(Name,'a') or startswith(Name,'c'))",
			want: queryir.Group{
				Operator:   queryir.LogicAnd,
				Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25))},
				SubGroups: []queryir.Group{queryir.Or(
					queryir.Where("Name", queryir.OpStartsWith, ir.IRString("a")),
					queryir.Where("Name", queryir.OpStartsWith, ir.IRString("c")),
				)},
			},
		},
		{
			name:  "parenthesized single predicate",
			input: "(Age eq 25)",
			want:  queryir.And(queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25))),
		},
		{
			name:  "nested path",
			input: "Address.City eq 'Oslo'",
			want:  queryir.And(queryir.Where("Address.City", queryir.OpEqualTo, ir.IRString("Oslo"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilter(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter_Errors(t *testing.T) {
	tests := []struct {
		input  string
		offset string
	}{
		{"Age eq", "offset 6"},
		{"Age equals 3", "offset 4"},
		{"Name eq 'open", "offset 8"},
		{"Age eq 25 Name", "offset 10"},
		{"(Age eq 25", "offset 10"},
		{"not startswith(Name,'a')", "offset 4"},
		{"contains(Name, null)", "offset 0"},
		{"Age lt null", "offset 4"},
		{"Age eq 1.2.3", "offset 7"},
		{"Age # 1", "offset 4"},
		{"frobnicate(Name)", "offset 10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseFilter(tt.input)
			require.Error(t, err)
			assert.True(t, queryir.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tt.offset)
		})
	}
}

func TestParseFilter_ByteOffsets(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset string
	}{
		{name: "invalid byte inside literal", input: "Name eq '\xff' and Age # 1", offset: "at offset 20"},
		{name: "multibyte rune inside literal", input: "Name eq '\u00e9' and Age # 1", offset: "at offset 21"},
		{name: "invalid byte after identifier", input: "Age\xfe eq 1", offset: "at offset 3"},
		{name: "multibyte identifier", input: "Gr\u00f6\u00dfe # 1", offset: "at offset 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter(tt.input)
			require.Error(t, err)
			assert.True(t, queryir.IsInvalidArgument(err))
			assert.Contains(t, err.Error(), tt.offset)
		})
	}
}

func TestParseFilter_LiteralKeepsRawBytes(t *testing.T) {
	g, err := ParseFilter("Name eq '\xff''x'")
	require.NoError(t, err)
	require.Len(t, g.Predicates, 1)
	assert.Equal(t, ir.IRString("\xff'x"), g.Predicates[0].Value)
}

func TestParseFilter_ScenarioB(t *testing.T) {
	g, err := ParseFilter("startswith(Name,'a') or startswith(Name,'c')")
	require.NoError(t, err)

	test, err := predicate.CompileGroup(testutil.People(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann", "Carl"}, testutil.Names(predicate.Filter(testutil.Scenario(), test)))
}

func TestParseFilter_DepthLimit(t *testing.T) {
	src := ""
	for i := 0; i < queryir.MaxDepth; i++ {
		src += "("
	}
	src += "Age eq 1"
	for i := 0; i < queryir.MaxDepth; i++ {
		src += ")"
	}

	_, err := ParseFilter(src)
	require.Error(t, err)
	assert.True(t, queryir.IsInvalidArgument(err))
}
