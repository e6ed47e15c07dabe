package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/timerange"
	"github.com/shopspring/decimal"
)

const clockLayout = "15:04:05"

// LateInput is what the late-deduction pass reads.
type LateInput struct {
	Date     time.Time
	WorkTime schedule.WorkTime
	Working  WorkingSet
	Worked   []timerange.Interval
	Tiers    []deduction.Tier
}

// ComputeLateDeduction grades each working block for lateness and sums the
// matched rule fractions, capped at one day.
func ComputeLateDeduction(in LateInput, p Policy) attendance.LateDeductionTrace {
	trace := attendance.LateDeductionTrace{
		Date:       in.Date.Format("2006-01-02"),
		WorkTimeID: in.WorkTime.ID,
		Blocks:     make([]attendance.BlockTrace, 0, len(in.Working.Intervals)),
	}

	total := decimal.Zero
	one := decimal.NewFromInt(1)

	for i, block := range in.Working.Intervals {
		index := i + 1
		boundary, source := validInBoundary(in, index, block, p)

		bt := attendance.BlockTrace{
			BlockIndex:      index,
			Start:           block.Start.Format(clockLayout),
			End:             block.End.Format(clockLayout),
			ValidInBoundary: boundary.Format(clockLayout),
			BaselineSource:  source,
		}

		punchIn, ok := blockPunchIn(in.Worked, block, p.EarlyArrivalLookback)
		if !ok {
			trace.Blocks = append(trace.Blocks, bt)
			continue
		}
		punch := punchIn.Format(clockLayout)
		bt.PunchIn = &punch

		if punchIn.After(boundary) {
			bt.LateMinutes = timerange.CeilMinutes(int64(punchIn.Sub(boundary) / time.Second))
		}

		if bt.LateMinutes > 0 {
			if tier, ok := SelectTier(in.Tiers, index); ok {
				tierID := tier.ID
				bt.TierID = &tierID
				if rule, ok := MatchRule(tier.Rules, bt.LateMinutes); ok {
					bt.Rule = &attendance.MatchedRule{
						ID:             rule.ID,
						MinMinutes:     rule.MinMinutes,
						MaxMinutes:     rule.MaxMinutes,
						DeductionValue: rule.DeductionValue,
					}
					d := decimal.NewFromFloat(math.Abs(rule.DeductionValue))
					if d.GreaterThan(one) {
						d = one
					}
					bt.Deduction = d.InexactFloat64()
					total = total.Add(d)
					if total.GreaterThan(one) {
						total = one
					}
				}
			}
		}
		trace.Blocks = append(trace.Blocks, bt)
	}

	trace.TotalFraction = total.InexactFloat64()
	trace.DeductedDays = round2(total)
	return trace
}

// validInBoundary returns the latest on-time punch for a block and where it came from.
func validInBoundary(in LateInput, index int, block timerange.Interval, p Policy) (time.Time, attendance.BaselineSource) {
	fallback := block.Start.Add(p.DefaultGrace)

	if index == 1 {
		if ts, ok := timerange.ToTimestamp(in.Date, in.WorkTime.ValidInEnd); ok {
			return timerange.RollForward(ts, block.Start), attendance.BaselineShiftValidInEnd
		}
		return fallback, attendance.BaselineDefault
	}

	prev, ok := precedingBreak(in.Working.Breaks, index, block)
	if !ok || !prev.Break.IsShiftSplit {
		return fallback, attendance.BaselineDefault
	}
	if ts, ok := timerange.ToTimestamp(in.Date, prev.Break.ValidBreakInEnd); ok {
		return timerange.RollForward(ts, block.Start), attendance.BaselinePrecedingBreakValidIn
	}
	return prev.Interval.End, attendance.BaselinePrecedingBreakClippedEnd
}

// precedingBreak finds the clipped break ending where the block starts,
// falling back to the break at the same position in start order.
func precedingBreak(breaks []ClippedBreak, index int, block timerange.Interval) (ClippedBreak, bool) {
	for _, b := range breaks {
		if b.Interval.End.Equal(block.Start) {
			return b, true
		}
	}
	if index-2 >= 0 && index-2 < len(breaks) {
		return breaks[index-2], true
	}
	return ClippedBreak{}, false
}

// blockPunchIn picks the earliest worked interval that starts inside the
// block, or starts within lookback before it and runs into it.
func blockPunchIn(worked []timerange.Interval, block timerange.Interval, lookback time.Duration) (time.Time, bool) {
	var best time.Time
	found := false
	earliest := block.Start.Add(-lookback)

	for _, w := range worked {
		inside := block.Contains(w.Start)
		early := !w.Start.Before(earliest) && w.Start.Before(block.Start) && w.End.After(block.Start)
		if !inside && !early {
			continue
		}
		if !found || w.Start.Before(best) {
			best = w.Start
			found = true
		}
	}
	return best, found
}

// SelectTier prefers a tier bound to blockIndex, then the shift-wide default.
func SelectTier(tiers []deduction.Tier, blockIndex int) (deduction.Tier, bool) {
	for _, t := range tiers {
		if !t.IsDefault() && *t.BlockIndex == blockIndex {
			return t, true
		}
	}
	for _, t := range tiers {
		if t.IsDefault() {
			return t, true
		}
	}
	return deduction.Tier{}, false
}

// MatchRule returns the bucket with the largest min_minutes whose range holds
// lateMinutes. When no upper bound fits it falls back to the largest
// min_minutes not above lateMinutes.
func MatchRule(rules []deduction.Rule, lateMinutes int) (deduction.Rule, bool) {
	var bounded, lower *deduction.Rule
	for i := range rules {
		r := &rules[i]
		if r.MinMinutes > lateMinutes {
			continue
		}
		if lower == nil || r.MinMinutes > lower.MinMinutes {
			lower = r
		}
		if r.MaxMinutes != nil && lateMinutes > *r.MaxMinutes {
			continue
		}
		if bounded == nil || r.MinMinutes > bounded.MinMinutes {
			bounded = r
		}
	}
	if bounded != nil {
		return *bounded, true
	}
	if lower != nil {
		return *lower, true
	}
	return deduction.Rule{}, false
}
