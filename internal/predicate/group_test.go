package predicate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/testutil"
)

func filterPeople(t *testing.T, g queryir.Group, people []testutil.Person) []string {
	t.Helper()
	test, err := CompileGroup(testutil.People(), g)
	require.NoError(t, err)
	return testutil.Names(Filter(people, test))
}

func TestCompileGroup_EmptyIsIdentity(t *testing.T) {
	for _, g := range []queryir.Group{
		{},
		{Operator: queryir.LogicAnd},
		{Operator: queryir.LogicOr, SubGroups: []queryir.Group{{}}},
		queryir.And(queryir.Predicate{Operator: queryir.OpNone}),
	} {
		test, err := CompileGroup(testutil.People(), g)
		require.NoError(t, err)
		assert.Nil(t, test)
		assert.Equal(t, []string{"Bob", "ann", "Carl"}, testutil.Names(Filter(testutil.Scenario(), test)))
	}
}

func TestCompileGroup_ScenarioA(t *testing.T) {
	g := queryir.And(queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25)))
	assert.Equal(t, []string{"ann", "Carl"}, filterPeople(t, g, testutil.Scenario()))
}

func TestCompileGroup_ScenarioB(t *testing.T) {
	g := queryir.Group{
		Operator: queryir.LogicAnd,
		SubGroups: []queryir.Group{
			queryir.Or(
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("a")),
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("c")),
			),
		},
	}
	assert.Equal(t, []string{"ann", "Carl"}, filterPeople(t, g, testutil.Scenario()))
}

func TestCompileGroup_LeftAndRightAggregates(t *testing.T) {
	people := append(testutil.Scenario(), testutil.Person{Name: "al", Age: 40})

	// Age > 24 AND (Name starts with a OR Name starts with b)
	and := queryir.Group{
		Operator:   queryir.LogicAnd,
		Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpGreaterThan, ir.IRInt(24))},
		SubGroups: []queryir.Group{
			queryir.Or(
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("a")),
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("b")),
			),
		},
	}
	assert.Equal(t, []string{"Bob", "ann", "al"}, filterPeople(t, and, people))

	// Age = 40 OR (Age = 25 AND Name starts with c)
	or := queryir.Group{
		Operator:   queryir.LogicOr,
		Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(40))},
		SubGroups: []queryir.Group{
			queryir.And(
				queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25)),
				queryir.Where("Name", queryir.OpStartsWith, ir.IRString("c")),
			),
		},
	}
	assert.Equal(t, []string{"Carl", "al"}, filterPeople(t, or, people))
}

func TestCompileGroup_SubgroupsCombineWithGroupLogic(t *testing.T) {
	g := queryir.Group{
		Operator: queryir.LogicOr,
		SubGroups: []queryir.Group{
			queryir.And(queryir.Where("Name", queryir.OpEqualTo, ir.IRString("bob"))),
			queryir.And(queryir.Where("Name", queryir.OpEqualTo, ir.IRString("carl"))),
		},
	}
	assert.Equal(t, []string{"Bob", "Carl"}, filterPeople(t, g, testutil.Scenario()))
}

func TestCompileGroup_NoneWithChildren(t *testing.T) {
	g := queryir.Group{
		Operator:   queryir.LogicNone,
		Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25))},
	}

	_, err := CompileGroup(testutil.People(), g)
	require.Error(t, err)
	assert.True(t, queryir.IsNotImplemented(err))
}

func TestCompileGroup_PropagatesLeafErrors(t *testing.T) {
	g := queryir.Group{
		Operator: queryir.LogicAnd,
		SubGroups: []queryir.Group{
			queryir.Or(queryir.Where("Name", queryir.OpLessThan, ir.IRString("m"))),
		},
	}

	_, err := CompileGroup(testutil.People(), g)
	require.Error(t, err)
	assert.True(t, queryir.IsUnsupportedOperator(err))
}

func TestCompileGroup_DepthLimit(t *testing.T) {
	g := queryir.And(queryir.Where("Age", queryir.OpEqualTo, ir.IRInt(25)))
	for i := 0; i < queryir.MaxDepth; i++ {
		g = queryir.Group{Operator: queryir.LogicAnd, SubGroups: []queryir.Group{g}}
	}

	_, err := CompileGroup(testutil.People(), g)
	require.Error(t, err)
	assert.True(t, queryir.IsInvalidArgument(err))
}

func TestCompileGroup_WireRoundTrip(t *testing.T) {
	g := queryir.Group{
		Operator:   queryir.LogicOr,
		Predicates: []queryir.Predicate{queryir.Where("Age", queryir.OpGreaterThanOrEqualTo, ir.IRInt(30))},
		SubGroups: []queryir.Group{
			queryir.And(
				queryir.Where("Name", queryir.OpContains, ir.IRString("N")),
				queryir.Where("Nickname", queryir.OpIsNull, nil),
			),
		},
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	parsed, err := queryir.ParseGroup(data)
	require.NoError(t, err)

	original, err := CompileGroup(testutil.People(), g)
	require.NoError(t, err)
	decoded, err := CompileGroup(testutil.People(), parsed)
	require.NoError(t, err)

	people := append(testutil.Scenario(),
		testutil.Person{Name: "Nina", Age: 12},
		testutil.Person{Name: "Nils", Age: 12, Nickname: testutil.Ptr("n")},
	)
	for _, p := range people {
		assert.Equal(t, original(p), decoded(p), "record %s", p.Name)
	}
	assert.Equal(t, []string{"Bob", "ann", "Nina"}, testutil.Names(Filter(people, decoded)))
}
