package risk

import "time"

// Shift codes for the three 8-hour bands of the day.
const (
	ShiftMorning = 1 // 06:00-14:00
	ShiftEvening = 2 // 14:00-22:00
	ShiftNight   = 3 // 22:00-06:00
)

// TemporalFeatures are the time-derived inputs to segment scoring.
type TemporalFeatures struct {
	Hour    int `json:"hour"`    // 0-23
	Month   int `json:"month"`   // 1-12
	Weekday int `json:"weekday"` // ISO: Monday=1 .. Sunday=7
	Shift   int `json:"shift"`   // 1-3
}

// DeriveTemporal extracts temporal features from a timestamp. Pure and total.
func DeriveTemporal(t time.Time) TemporalFeatures {
	return TemporalFeatures{
		Hour:    t.Hour(),
		Month:   int(t.Month()),
		Weekday: isoWeekday(t.Weekday()),
		Shift:   shiftFromHour(t.Hour()),
	}
}

// isoWeekday converts Go's Sunday=0 convention to ISO Monday=1..Sunday=7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func shiftFromHour(hour int) int {
	switch {
	case hour >= 6 && hour < 14:
		return ShiftMorning
	case hour >= 14 && hour < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}
