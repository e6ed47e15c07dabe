package attendance

type BaselineSource string

const (
	BaselineShiftValidInEnd          BaselineSource = "shift_valid_in_end"
	BaselinePrecedingBreakValidIn    BaselineSource = "preceding_break.valid_break_in_end"
	BaselinePrecedingBreakClippedEnd BaselineSource = "preceding_break.clipped_break_end"
	BaselineDefault                  BaselineSource = "default"
)

// LateDeductionTrace is the audit record of why a deduction was applied.
type LateDeductionTrace struct {
	TraceID       string       `json:"trace_id"`
	Date          string       `json:"date"`
	WorkTimeID    int64        `json:"work_time_id"`
	Blocks        []BlockTrace `json:"blocks"`
	TotalFraction float64      `json:"total_fraction"`
	DeductedDays  float64      `json:"deducted_days"`
}

type BlockTrace struct {
	BlockIndex      int            `json:"block_index"`
	Start           string         `json:"start"`
	End             string         `json:"end"`
	ValidInBoundary string         `json:"valid_in_boundary"`
	BaselineSource  BaselineSource `json:"baseline_source"`
	PunchIn         *string        `json:"punch_in"`
	LateMinutes     int            `json:"late_minutes"`
	TierID          *int64         `json:"tier_id"`
	Rule            *MatchedRule   `json:"rule"`
	Deduction       float64        `json:"deduction"`
}

type MatchedRule struct {
	ID             int64   `json:"id"`
	MinMinutes     int     `json:"min_minutes"`
	MaxMinutes     *int    `json:"max_minutes"`
	DeductionValue float64 `json:"deduction_value"`
}

// PrimaryRuleID returns the rule with the largest applied deduction, the
// first one on ties.
func (t LateDeductionTrace) PrimaryRuleID() *int64 {
	var id *int64
	best := 0.0
	for _, b := range t.Blocks {
		if b.Rule == nil || b.Deduction <= best {
			continue
		}
		ruleID := b.Rule.ID
		id = &ruleID
		best = b.Deduction
	}
	return id
}
