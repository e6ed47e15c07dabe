package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/deduction"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
)

type deductionRepositoryImpl struct {
	db *database.DB
}

func NewDeductionRepository(db *database.DB) deduction.Repository {
	return &deductionRepositoryImpl{db: db}
}

// ListTiersByWorkTime implements deduction.Repository.
func (r *deductionRepositoryImpl) ListTiersByWorkTime(ctx context.Context, workTimeID int64) ([]deduction.Tier, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT t.id, t.work_time_id, t.name, t.block_index,
			   r.id, r.min_minutes, r.max_minutes, r.deduction_value
		FROM deduction_tiers t
		LEFT JOIN late_deduction_rules r ON r.tier_id = t.id
		WHERE t.work_time_id = $1
		ORDER BY t.id, r.min_minutes DESC NULLS LAST
	`

	rows, err := q.Query(ctx, query, workTimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deduction tiers: %w", err)
	}
	defer rows.Close()

	var tiers []deduction.Tier
	index := make(map[int64]int)

	for rows.Next() {
		var tier deduction.Tier
		var ruleID *int64
		var minMinutes, maxMinutes *int
		var value *float64

		if err := rows.Scan(
			&tier.ID, &tier.WorkTimeID, &tier.Name, &tier.BlockIndex,
			&ruleID, &minMinutes, &maxMinutes, &value,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deduction tier: %w", err)
		}

		pos, ok := index[tier.ID]
		if !ok {
			tiers = append(tiers, tier)
			pos = len(tiers) - 1
			index[tier.ID] = pos
		}

		if ruleID == nil {
			continue
		}
		rule := deduction.Rule{ID: *ruleID, TierID: tier.ID, MaxMinutes: maxMinutes}
		if minMinutes != nil {
			rule.MinMinutes = *minMinutes
		}
		if value != nil {
			rule.DeductionValue = *value
		}
		tiers[pos].Rules = append(tiers[pos].Rules, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tiers, nil
}
