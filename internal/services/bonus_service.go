package services

import (
	"sort"

	"github.com/shopspring/decimal"

	model "fairwork.com/fairwork/internal/models"
)

// GroupBreakdown explains the bonus owed under one task group, for the
// human-auditable messages sent to workers and requesters.
type GroupBreakdown struct {
	Group          *model.TaskGroup
	Audits         []model.Audit
	PerUnit        decimal.Decimal
	RevisedPayment decimal.Decimal
	Subtotal       decimal.Decimal
}

// Bonus is the total owed to one worker by one requester, with its
// per-task-group explanation.
type Bonus struct {
	Total          decimal.Decimal
	Breakdowns     []GroupBreakdown
	Unestimated    []model.Audit
	Representative *model.Audit
}

// ComputeBonus sums the underpayment across one worker's pending audits for
// one requester. Per-submission amounts are summed at full precision and the
// total is rounded up to the next cent, never down. Audits with no rate
// estimate contribute zero and are reported separately.
func ComputeBonus(audits []model.Audit, minimumWage decimal.Decimal) Bonus {
	bonus := Bonus{Total: decimal.Zero}
	if len(audits) == 0 {
		return bonus
	}
	bonus.Representative = &audits[0]

	byGroup := make(map[string][]model.Audit)
	var groupIDs []string
	for _, audit := range audits {
		group := audit.Submission.Task.TaskGroup
		if _, seen := byGroup[group.ID]; !seen {
			groupIDs = append(groupIDs, group.ID)
		}
		byGroup[group.ID] = append(byGroup[group.ID], audit)
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		groupAudits := byGroup[groupID]
		group := groupAudits[0].Submission.Task.TaskGroup

		subtotal := decimal.Zero
		perUnit := decimal.Zero
		var counted []model.Audit
		for _, audit := range groupAudits {
			owed := audit.Underpayment(group.Payment, minimumWage)
			if owed == nil {
				bonus.Unestimated = append(bonus.Unestimated, audit)
				continue
			}
			perUnit = *owed
			subtotal = subtotal.Add(*owed)
			counted = append(counted, audit)
		}
		if len(counted) == 0 {
			continue
		}

		bonus.Total = bonus.Total.Add(subtotal)
		bonus.Breakdowns = append(bonus.Breakdowns, GroupBreakdown{
			Group:          group,
			Audits:         counted,
			PerUnit:        perUnit,
			RevisedPayment: group.Payment.Add(perUnit),
			Subtotal:       subtotal,
		})
	}

	bonus.Total = bonus.Total.RoundUp(2)
	return bonus
}
