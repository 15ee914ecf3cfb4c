package risk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viasegura/viasegura/internal/risk"
)

func TestDeriveTemporal(t *testing.T) {
	// Thursday 2024-03-14 08:30 local time.
	ts := time.Date(2024, time.March, 14, 8, 30, 0, 0, time.UTC)

	features := risk.DeriveTemporal(ts)

	assert.Equal(t, 8, features.Hour)
	assert.Equal(t, 3, features.Month)
	assert.Equal(t, 4, features.Weekday)
	assert.Equal(t, risk.ShiftMorning, features.Shift)
}

func TestDeriveTemporalShiftBoundaries(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{0, risk.ShiftNight},
		{5, risk.ShiftNight},
		{6, risk.ShiftMorning},
		{13, risk.ShiftMorning},
		{14, risk.ShiftEvening},
		{21, risk.ShiftEvening},
		{22, risk.ShiftNight},
		{23, risk.ShiftNight},
	}

	for _, tt := range tests {
		ts := time.Date(2024, time.June, 3, tt.hour, 0, 0, 0, time.UTC)
		got := risk.DeriveTemporal(ts)
		assert.Equal(t, tt.want, got.Shift, "hour %d", tt.hour)
	}
}

func TestDeriveTemporalISOWeekday(t *testing.T) {
	// 2024-06-03 is a Monday; walk the full week.
	for offset, want := range []int{1, 2, 3, 4, 5, 6, 7} {
		ts := time.Date(2024, time.June, 3+offset, 12, 0, 0, 0, time.UTC)
		got := risk.DeriveTemporal(ts)
		assert.Equal(t, want, got.Weekday, "day offset %d", offset)
	}
}
