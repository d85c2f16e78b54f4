package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	late := time.Date(2026, time.October, 15, 23, 30, 0, 0, loc)

	assert.Equal(t, Date(2026, time.October, 15), Truncate(late))
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name  string
		day   time.Time
		start time.Time
		end   time.Time
	}{
		{"thursday", Date(2026, time.October, 15), Date(2026, time.October, 12), Date(2026, time.October, 18)},
		{"monday", Date(2026, time.October, 12), Date(2026, time.October, 12), Date(2026, time.October, 18)},
		{"sunday", Date(2026, time.October, 18), Date(2026, time.October, 12), Date(2026, time.October, 18)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.start, StartOfWeek(tt.day))
			assert.Equal(t, tt.end, EndOfWeek(tt.day))
		})
	}
}

func TestInCurrentWeek(t *testing.T) {
	today := Date(2026, time.October, 15)

	assert.True(t, InCurrentWeek(today, today))
	assert.True(t, InCurrentWeek(Date(2026, time.October, 18), today))
	assert.False(t, InCurrentWeek(Date(2026, time.October, 14), today))
	assert.False(t, InCurrentWeek(Date(2026, time.October, 19), today))
}

func TestSet(t *testing.T) {
	s := NewSet(Date(2026, time.October, 17), Date(2026, time.October, 16))

	assert.True(t, s.Contains(time.Date(2026, time.October, 16, 13, 0, 0, 0, time.UTC)))
	assert.False(t, s.Add(Date(2026, time.October, 16)))
	assert.True(t, s.Remove(Date(2026, time.October, 17)))
	assert.False(t, s.Remove(Date(2026, time.October, 17)))
	assert.Equal(t, []time.Time{Date(2026, time.October, 16)}, s.Sorted())
}

func TestParseFormat(t *testing.T) {
	d, err := Parse("2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", Format(d))

	_, err = Parse("15/10/2026")
	assert.Error(t, err)
}

func TestFixedClock(t *testing.T) {
	c := FixedClock{Day: time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)}
	assert.Equal(t, Date(2026, time.October, 15), c.Today())
}
