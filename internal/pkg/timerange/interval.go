package timerange

import (
	"math"
	"time"
)

// rolloverThreshold is how far before an anchor a timestamp may sit before
// it is treated as belonging to the next calendar day.
const rolloverThreshold = 12 * time.Hour

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

func (i Interval) Seconds() int64 { return int64(i.End.Sub(i.Start) / time.Second) }

func (i Interval) Minutes() int { return RoundMinutes(i.Seconds()) }

func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToTimestamp places a clock time on a calendar date. It reports false for NoPunch.
func ToTimestamp(date time.Time, c ClockTime) (time.Time, bool) {
	if !c.Valid() {
		return time.Time{}, false
	}
	return Day(date).Add(time.Duration(c.Seconds()) * time.Second), true
}

// Normalize builds the interval for start..end on date. An end at or before
// the start belongs to the following day.
func Normalize(date time.Time, start, end ClockTime) (Interval, bool) {
	startTs, ok := ToTimestamp(date, start)
	if !ok {
		return Interval{}, false
	}
	endTs, ok := ToTimestamp(date, end)
	if !ok {
		return Interval{}, false
	}
	if !endTs.After(startTs) {
		endTs = endTs.Add(24 * time.Hour)
	}
	return Interval{Start: startTs, End: endTs}, true
}

// RollForward moves ts one day later when it is more than 12h before anchor.
func RollForward(ts, anchor time.Time) time.Time {
	if anchor.Sub(ts) > rolloverThreshold {
		return ts.Add(24 * time.Hour)
	}
	return ts
}

// RollIntervalForward applies RollForward to an interval as a unit.
func RollIntervalForward(i Interval, anchor time.Time) Interval {
	if anchor.Sub(i.Start) > rolloverThreshold {
		return Interval{Start: i.Start.Add(24 * time.Hour), End: i.End.Add(24 * time.Hour)}
	}
	return i
}

// OverlapSeconds returns max(0, min(aEnd,bEnd) - max(aStart,bStart)).
func OverlapSeconds(aStart, aEnd, bStart, bEnd time.Time) int64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Second)
}

// Overlap returns the shared part of a and b, reporting false when disjoint.
func Overlap(a, b Interval) (Interval, bool) {
	if OverlapSeconds(a.Start, a.End, b.Start, b.End) == 0 {
		return Interval{}, false
	}
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return Interval{Start: start, End: end}, true
}

// Subtract removes sub from every interval, keeping the surviving left and
// right remainders.
func Subtract(intervals []Interval, sub Interval) []Interval {
	out := make([]Interval, 0, len(intervals)+1)
	for _, iv := range intervals {
		if OverlapSeconds(iv.Start, iv.End, sub.Start, sub.End) == 0 {
			out = append(out, iv)
			continue
		}
		if sub.Start.After(iv.Start) {
			out = append(out, Interval{Start: iv.Start, End: sub.Start})
		}
		if sub.End.Before(iv.End) {
			out = append(out, Interval{Start: sub.End, End: iv.End})
		}
	}
	return out
}

// TotalSeconds sums interval durations.
func TotalSeconds(intervals []Interval) int64 {
	var total int64
	for _, iv := range intervals {
		total += iv.Seconds()
	}
	return total
}

// RoundMinutes converts seconds to minutes rounding half away from zero.
func RoundMinutes(seconds int64) int {
	return int(math.Round(float64(seconds) / 60))
}

// CeilMinutes converts seconds to minutes rounding up.
func CeilMinutes(seconds int64) int {
	return int(math.Ceil(float64(seconds) / 60))
}
