package paginator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 10))
	assert.Equal(t, 1, NumPages(10, 10))
	assert.Equal(t, 2, NumPages(11, 10))
	assert.Equal(t, 2, NumPages(13, 10))
	assert.Equal(t, 1, NumPages(5, 0))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		total      int64
		wantNumber int
		wantOffset int
	}{
		{"missing page", "", 13, 1, 0},
		{"non-integer", "abc", 13, 1, 0},
		{"second page", "2", 13, 2, 10},
		{"too large clamps to last", "99", 13, 2, 10},
		{"zero clamps to last", "0", 13, 2, 10},
		{"negative clamps to last", "-3", 13, 2, 10},
		{"empty result has one page", "5", 0, 1, 0},
		{"overflowing integer clamps to last", "99999999999999999999", 13, 2, 10},
		{"overflowing negative clamps to last", "-99999999999999999999", 13, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number, limit, offset := Window(tt.raw, tt.total, 10)
			assert.Equal(t, tt.wantNumber, number)
			assert.Equal(t, 10, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage("1.5"))
	assert.Equal(t, 7, ParsePage("7"))
	assert.Equal(t, math.MaxInt, ParsePage("99999999999999999999"))
}

func TestPageNavigation(t *testing.T) {
	first := New([]int{1, 2}, 1, 2, 5)
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())
	assert.True(t, first.HasOtherPages())
	assert.Equal(t, []int{1, 2, 3}, first.PageRange())
	assert.Equal(t, 2, first.NextNumber())

	last := New([]int{5}, 3, 2, 5)
	assert.True(t, last.HasPrevious())
	assert.False(t, last.HasNext())
	assert.Equal(t, 2, last.PreviousNumber())

	empty := New[int](nil, 1, 10, 0)
	assert.Equal(t, 1, empty.NumPages)
	assert.False(t, empty.HasOtherPages())
	assert.Empty(t, empty.Items)
}
