package holiday

import "time"

// Holiday is either a dated holiday or a recurring month/day holiday.
type Holiday struct {
	ID                int64
	Name              string
	HolidayDate       time.Time
	IsRecurring       bool
	ExtendedUntil     *time.Time
	DefaultMultiplier float64
	ApplyMultiplier   bool
}

// AppliesTo reports whether the holiday covers date.
//
// A dated holiday covers HolidayDate through ExtendedUntil inclusive. A
// recurring holiday matches on month and day every year from HolidayDate
// until ExtendedUntil, when set.
func (h Holiday) AppliesTo(date time.Time) bool {
	d := dayOf(date)
	start := dayOf(h.HolidayDate)
	if !h.IsRecurring {
		if d.Equal(start) {
			return true
		}
		if h.ExtendedUntil != nil {
			end := dayOf(*h.ExtendedUntil)
			return !d.Before(start) && !d.After(end)
		}
		return false
	}
	if d.Before(start) {
		return false
	}
	if d.Month() != start.Month() || d.Day() != start.Day() {
		return false
	}
	if h.ExtendedUntil != nil && d.After(dayOf(*h.ExtendedUntil)) {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
