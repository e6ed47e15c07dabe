package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/shopspring/decimal"
)

// ClippedBreak is a break window cut down to the part inside the shift.
type ClippedBreak struct {
	Break    schedule.BreakWindow
	Interval timerange.Interval
}

// WorkingSet is the shift interval with every break removed.
type WorkingSet struct {
	Shift               timerange.Interval
	Intervals           []timerange.Interval
	Breaks              []ClippedBreak
	AppliedBreakMinutes int
	// CreditBasisMinutes is never below 1.
	CreditBasisMinutes int
}

// BuildWorkingIntervals clips breaks to the shift and subtracts them.
func BuildWorkingIntervals(date time.Time, shift timerange.Interval, breaks []schedule.BreakWindow) WorkingSet {
	set := WorkingSet{
		Shift:     shift,
		Intervals: []timerange.Interval{shift},
	}

	var breakSeconds int64
	for _, b := range breaks {
		iv, ok := timerange.Normalize(date, b.BreakStart, b.BreakEnd)
		if !ok {
			continue
		}
		iv = timerange.RollIntervalForward(iv, shift.Start)

		clipped, ok := timerange.Overlap(iv, shift)
		if !ok {
			continue
		}
		set.Breaks = append(set.Breaks, ClippedBreak{Break: b, Interval: clipped})
		breakSeconds += clipped.Seconds()
		set.Intervals = timerange.Subtract(set.Intervals, clipped)
	}

	sort.SliceStable(set.Breaks, func(i, j int) bool {
		return set.Breaks[i].Interval.Start.Before(set.Breaks[j].Interval.Start)
	})
	sort.SliceStable(set.Intervals, func(i, j int) bool {
		return set.Intervals[i].Start.Before(set.Intervals[j].Start)
	})

	set.AppliedBreakMinutes = timerange.RoundMinutes(breakSeconds)
	set.CreditBasisMinutes = timerange.RoundMinutes(timerange.TotalSeconds(set.Intervals))
	if set.CreditBasisMinutes < 1 {
		set.CreditBasisMinutes = 1
	}
	return set
}

// WorkedIntervals pairs the morning and afternoon punches. A leg with a
// missing side is skipped. Legs are placed on the shift's day, rolled
// forward when they fall far before the shift start.
func WorkedIntervals(date time.Time, punches attendance.Punches, shiftStart time.Time) []timerange.Interval {
	legs := [][2]timerange.ClockTime{
		{punches.TimeInMorning, punches.TimeOutMorning},
		{punches.TimeInAfternoon, punches.TimeOutAfternoon},
	}

	var worked []timerange.Interval
	for _, leg := range legs {
		iv, ok := timerange.Normalize(date, leg[0], leg[1])
		if !ok {
			continue
		}
		worked = append(worked, timerange.RollIntervalForward(iv, shiftStart))
	}
	return worked
}

// ComputeCredit sums worked time inside working intervals and converts it
// to a day fraction in [0, 1].
func ComputeCredit(worked, working []timerange.Interval, creditBasisMinutes int) (renderedMinutes int, adjustedDays float64) {
	var seconds int64
	for _, w := range worked {
		for _, iv := range working {
			seconds += timerange.OverlapSeconds(w.Start, w.End, iv.Start, iv.End)
		}
	}
	renderedMinutes = timerange.RoundMinutes(seconds)

	if creditBasisMinutes < 1 {
		creditBasisMinutes = 1
	}
	ratio := decimal.NewFromInt(int64(renderedMinutes)).Div(decimal.NewFromInt(int64(creditBasisMinutes)))
	return renderedMinutes, round2(clampUnit(ratio))
}

// MatchHoliday returns the first holiday covering date.
func MatchHoliday(holidays []holiday.Holiday, date time.Time) *holiday.Holiday {
	for i := range holidays {
		if holidays[i].AppliesTo(date) {
			return &holidays[i]
		}
	}
	return nil
}

// ApplyHolidayMultiplier scales a full day only. Partial days are returned unchanged.
func ApplyHolidayMultiplier(adjustedDays float64, h *holiday.Holiday, clamp bool) (float64, bool) {
	if h == nil || !h.ApplyMultiplier || h.DefaultMultiplier <= 0 {
		return adjustedDays, false
	}
	if !decimal.NewFromFloat(adjustedDays).Equal(decimal.NewFromInt(1)) {
		return adjustedDays, false
	}

	scaled := decimal.NewFromFloat(adjustedDays).Mul(decimal.NewFromFloat(h.DefaultMultiplier))
	if clamp {
		scaled = clampUnit(scaled)
	}
	return round2(scaled), true
}

// IsEarlyOut reports whether either out punch is before its cutoff.
func IsEarlyOut(punches attendance.Punches, p Policy) bool {
	if punches.TimeOutMorning.Valid() && punches.TimeOutMorning.Before(p.MorningOutCutoff) {
		return true
	}
	return punches.TimeOutAfternoon.Valid() && punches.TimeOutAfternoon.Before(p.AfternoonOutCutoff)
}

// FinalCredit nets the deduction off the adjusted credit, never below zero.
func FinalCredit(adjustedDays, deductedDays float64) float64 {
	final := decimal.NewFromFloat(adjustedDays).Sub(decimal.NewFromFloat(deductedDays))
	if final.IsNegative() {
		return 0
	}
	return round2(final)
}

func clampUnit(d decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(one) {
		return one
	}
	return d
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
