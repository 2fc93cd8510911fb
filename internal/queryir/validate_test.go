package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/ir"
)

func TestValidate_EmptyGroup(t *testing.T) {
	assert.NoError(t, Validate(Group{}))
	assert.NoError(t, Validate(Group{Operator: LogicNone}))
	assert.NoError(t, Validate(Group{Operator: LogicOr}))
}

func TestValidate_NestedGroups(t *testing.T) {
	g := Group{
		Operator: LogicAnd,
		SubGroups: []Group{
			Or(
				Where("Name", OpStartsWith, ir.IRString("a")),
				Where("Name", OpStartsWith, ir.IRString("c")),
			),
		},
	}

	assert.NoError(t, Validate(g))
}

func TestValidate_NoneWithChildren(t *testing.T) {
	g := Group{
		Operator:   LogicNone,
		Predicates: []Predicate{Where("Age", OpEqualTo, ir.IRInt(25))},
	}

	err := Validate(g)
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))
	assert.Contains(t, err.Error(), "None")
}

func TestValidate_NoneWithChildrenInSubGroup(t *testing.T) {
	g := Group{
		Operator: LogicAnd,
		SubGroups: []Group{
			{},
			{SubGroups: []Group{And(Where("Age", OpIsNull, nil))}},
		},
	}

	err := Validate(g)
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))
	assert.Contains(t, err.Error(), "filter.subGroups[1]")
}

func TestValidate_UnknownLogic(t *testing.T) {
	err := Validate(Group{Operator: "Xor", Predicates: []Predicate{Where("Age", OpIsNull, nil)}})
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))
}

func TestValidate_UnknownOperator(t *testing.T) {
	err := Validate(And(Where("Age", "Between", ir.IRInt(1))))
	require.Error(t, err)
	assert.True(t, IsNotImplemented(err))

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "Age", qe.Property)
	assert.Equal(t, Operator("Between"), qe.Operator)
}

func TestValidate_MissingPropertyName(t *testing.T) {
	err := Validate(And(Where("", OpEqualTo, ir.IRInt(1))))
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	// None predicates carry no constraint, so they need no property.
	assert.NoError(t, Validate(And(Predicate{Operator: OpNone})))
}

func TestValidate_DepthLimit(t *testing.T) {
	deep := And(Where("Age", OpIsNull, nil))
	for i := 0; i < MaxDepth; i++ {
		deep = Group{Operator: LogicAnd, SubGroups: []Group{deep}}
	}

	err := Validate(deep)
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	shallow := And(Where("Age", OpIsNull, nil))
	for i := 0; i < MaxDepth-1; i++ {
		shallow = Group{Operator: LogicAnd, SubGroups: []Group{shallow}}
	}
	assert.NoError(t, Validate(shallow))
}

func TestValidateSort(t *testing.T) {
	assert.NoError(t, ValidateSort(nil))
	assert.NoError(t, ValidateSort(SortSpec{Asc("Name"), {PropertyName: "Age"}}))

	err := ValidateSort(SortSpec{{PropertyName: ""}})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	err = ValidateSort(SortSpec{{PropertyName: "Age", Direction: "Sideways"}})
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}
