package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	model "fairwork.com/fairwork/internal/models"
)

func pendingAudit(submissionID, groupID, payment, rate string) model.Audit {
	estimatedTime := 12 * time.Minute
	estimatedRate := decimal.RequireFromString(rate)
	group := &model.TaskGroup{
		ID:          groupID,
		Payment:     decimal.RequireFromString(payment),
		Environment: constants.EnvProduction,
		RequesterID: "req-1",
	}
	return model.Audit{
		SubmissionID:  submissionID,
		EstimatedTime: &estimatedTime,
		EstimatedRate: &estimatedRate,
		Status:        constants.AuditUnpaid,
		Submission: &model.Submission{
			ID:       submissionID,
			WorkerID: "worker-1",
			Worker:   &model.Worker{ID: "worker-1"},
			Task:     &model.Task{ID: "task-1", TaskGroup: group},
		},
	}
}

func TestComputeBonus_SumsPerGroupBreakdown(t *testing.T) {
	minimumWage := decimal.RequireFromString("11.00")

	// Each submission at $5.00/hr on a $1.00 piece rate is owed $1.20.
	audits := []model.Audit{
		pendingAudit("sub-1", "group-1", "1.00", "5.00"),
		pendingAudit("sub-2", "group-1", "1.00", "5.00"),
	}

	bonus := ComputeBonus(audits, minimumWage)
	if !bonus.Total.Equal(decimal.RequireFromString("2.40")) {
		t.Errorf("expected total 2.40, got %s", bonus.Total)
	}
	if len(bonus.Breakdowns) != 1 {
		t.Fatalf("expected one group breakdown, got %d", len(bonus.Breakdowns))
	}

	breakdown := bonus.Breakdowns[0]
	if len(breakdown.Audits) != 2 {
		t.Errorf("expected 2 counted submissions, got %d", len(breakdown.Audits))
	}
	if !breakdown.PerUnit.Round(2).Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("expected per-unit bonus 1.20, got %s", breakdown.PerUnit)
	}
	if !breakdown.RevisedPayment.Round(2).Equal(decimal.RequireFromString("2.20")) {
		t.Errorf("expected revised payment 2.20, got %s", breakdown.RevisedPayment)
	}
	if bonus.Representative == nil || bonus.Representative.SubmissionID != "sub-1" {
		t.Error("expected the first audit to be the representative")
	}
}

func TestComputeBonus_TotalRoundsUpToTheCent(t *testing.T) {
	minimumWage := decimal.RequireFromString("11.00")

	// $1.00 at $8.02/hr is owed 1.00 * (11/8.02 - 1) = 0.37157...; the total
	// must round up to 0.38, never down to 0.37.
	audits := []model.Audit{pendingAudit("sub-1", "group-1", "1.00", "8.02")}

	bonus := ComputeBonus(audits, minimumWage)
	if !bonus.Total.Equal(decimal.RequireFromString("0.38")) {
		t.Errorf("expected total rounded up to 0.38, got %s", bonus.Total)
	}
}

func TestComputeBonus_UnknownRateContributesZero(t *testing.T) {
	minimumWage := decimal.RequireFromString("11.00")

	known := pendingAudit("sub-1", "group-1", "1.00", "5.00")
	unknown := pendingAudit("sub-2", "group-2", "1.00", "5.00")
	unknown.EstimatedTime = nil
	unknown.EstimatedRate = nil

	bonus := ComputeBonus([]model.Audit{known, unknown}, minimumWage)
	if !bonus.Total.Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("expected total 1.20, got %s", bonus.Total)
	}
	if len(bonus.Unestimated) != 1 || bonus.Unestimated[0].SubmissionID != "sub-2" {
		t.Error("expected sub-2 reported as not estimatable")
	}
}

func TestComputeBonus_GroupsSortedByID(t *testing.T) {
	minimumWage := decimal.RequireFromString("11.00")
	audits := []model.Audit{
		pendingAudit("sub-1", "group-b", "1.00", "5.00"),
		pendingAudit("sub-2", "group-a", "1.00", "5.00"),
	}

	bonus := ComputeBonus(audits, minimumWage)
	if len(bonus.Breakdowns) != 2 {
		t.Fatalf("expected two breakdowns, got %d", len(bonus.Breakdowns))
	}
	if bonus.Breakdowns[0].Group.ID != "group-a" || bonus.Breakdowns[1].Group.ID != "group-b" {
		t.Error("expected breakdowns ordered by task group id")
	}
}

func TestBonusToken_DeterministicAndEnvironmentScoped(t *testing.T) {
	total := decimal.RequireFromString("2.40")

	first := BonusToken(constants.EnvProduction, "sub-1", total)
	second := BonusToken(constants.EnvProduction, "sub-1", total)
	if first != second {
		t.Error("expected the token to be a pure function of its inputs")
	}

	sandbox := BonusToken(constants.EnvSandbox, "sub-1", total)
	if sandbox == first {
		t.Error("expected sandbox and production tokens to differ for the same submission")
	}
}
