package accessor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sieve/internal/ir"
)

func TestKindCategories(t *testing.T) {
	tests := []struct {
		kind     Kind
		ordered  bool
		textlike bool
	}{
		{KindText, false, true},
		{KindTextual, false, true},
		{KindInt, true, false},
		{KindFloat, true, false},
		{KindBool, true, false},
		{KindTime, true, false},
		{KindOpaque, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.ordered, tt.kind.Ordered())
			assert.Equal(t, tt.textlike, tt.kind.Textlike())
			assert.Equal(t, tt.ordered || tt.textlike, tt.kind.Sortable())
		})
	}
}

func TestValue_IsZero(t *testing.T) {
	assert.True(t, TextValue("").IsZero())
	assert.True(t, IntValue(0).IsZero())
	assert.True(t, BoolValue(false).IsZero())
	assert.True(t, TimeValue(time.Time{}).IsZero())
	assert.False(t, IntValue(1).IsZero())
	assert.False(t, Null(KindInt).IsZero(), "null is not the zero value")
}

func TestValue_Compare(t *testing.T) {
	assert.Equal(t, -1, IntValue(1).Compare(IntValue(2)))
	assert.Equal(t, 1, FloatValue(2.5).Compare(FloatValue(2)))
	assert.Equal(t, -1, BoolValue(false).Compare(BoolValue(true)))
	assert.Equal(t, 0, BoolValue(true).Compare(BoolValue(true)))

	early := TimeValue(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	late := TimeValue(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, -1, early.Compare(late))
}

func TestValue_TextAndIR(t *testing.T) {
	assert.Equal(t, "2.5", FloatValue(2.5).Text())
	assert.Equal(t, "true", BoolValue(true).Text())
	assert.Equal(t, "", Null(KindText).Text())
	assert.Equal(t, "null", Null(KindInt).String())

	assert.Equal(t, ir.IRString("2.5"), FloatValue(2.5).IR())
	assert.Equal(t, ir.IRInt(7), IntValue(7).IR())
	assert.Equal(t, ir.IRNull{}, Null(KindFloat).IR())
	assert.True(t, OpaqueValue(nil).IsNull())
	assert.True(t, Value{}.IsNull())
}
