package deduction

// Tier groups late-deduction rules for a work time. A nil or zero
// BlockIndex makes it the shift-wide default tier.
type Tier struct {
	ID         int64
	WorkTimeID int64
	Name       string
	BlockIndex *int
	Rules      []Rule
}

func (t Tier) IsDefault() bool {
	return t.BlockIndex == nil || *t.BlockIndex == 0
}

// Rule is a lateness bucket. A nil MaxMinutes is unbounded.
type Rule struct {
	ID             int64
	TierID         int64
	MinMinutes     int
	MaxMinutes     *int
	DeductionValue float64
}
