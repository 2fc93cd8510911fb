package queryir

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewUnsupportedOperatorError("Name", OpLessThan, "text")
	assert.Equal(t,
		"UNSUPPORTED_OPERATOR_FOR_TYPE: operator not supported for text fields (property=Name, operator=LessThan)",
		err.Error())

	err = NewUnknownPropertyError("Salary")
	assert.Equal(t, "UNKNOWN_PROPERTY: property is not defined on the record type (property=Salary)", err.Error())

	err = NewNotImplementedError("no combinator")
	assert.Equal(t, "NOT_IMPLEMENTED: no combinator", err.Error())
}

func TestErrorCodeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"unknown property", NewUnknownPropertyError("x"), IsUnknownProperty},
		{"unsupported operator", NewUnsupportedOperatorError("x", OpContains, "opaque"), IsUnsupportedOperator},
		{"not sortable", NewNotSortableError("x", "opaque"), IsNotSortable},
		{"not implemented", NewNotImplementedError("x"), IsNotImplemented},
		{"invalid argument", NewInvalidArgumentError("x"), IsInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)), "helpers must see through wrapping")
		})
	}

	assert.False(t, IsUnknownProperty(fmt.Errorf("plain")))
	assert.False(t, IsNotSortable(NewUnknownPropertyError("x")))
}
