package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSeatLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"A1", "A1", true},
		{" a12 ", "A12", true},
		{"aa3", "AA3", true},
		{"", "", false},
		{"A", "", false},
		{"12", "", false},
		{"1A", "", false},
		{"A0", "", false},
		{"A01", "", false},
		{"A1B", "", false},
		{"A 1", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeSeatLabel(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestSeatInBounds(t *testing.T) {
	// 5 rows (A-E), 10 seats per row
	assert.True(t, SeatInBounds("A1", 5, 10))
	assert.True(t, SeatInBounds("E10", 5, 10))
	assert.False(t, SeatInBounds("F1", 5, 10))
	assert.False(t, SeatInBounds("A11", 5, 10))
	assert.False(t, SeatInBounds("A0", 5, 10))

	// wide layout reaching double-letter rows
	assert.True(t, SeatInBounds("AA1", 27, 4))
	assert.False(t, SeatInBounds("AB1", 27, 4))
}

func TestRowLabelRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		label := IndexToRowLabel(i)
		idx, ok := RowLabelToIndex(label)
		assert.True(t, ok, "label %q", label)
		assert.Equal(t, i, idx, "label %q", label)
	}

	assert.Equal(t, "A", IndexToRowLabel(0))
	assert.Equal(t, "Z", IndexToRowLabel(25))
	assert.Equal(t, "AA", IndexToRowLabel(26))

	_, ok := RowLabelToIndex("")
	assert.False(t, ok)
	_, ok = RowLabelToIndex("a")
	assert.False(t, ok)
}
