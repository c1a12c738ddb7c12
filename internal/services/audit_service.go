package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/estimator"
	model "fairwork.com/fairwork/internal/models"
	repository "fairwork.com/fairwork/internal/repositories"
)

// AuditService runs the audit pass: every approved submission without a final
// audit gets one, computed from its task group's current rate estimate.
// Re-runs refresh open audits in place and never duplicate them.
type AuditService struct {
	submissions *repository.SubmissionRepository
	durations   *repository.DurationRepository
	audits      *repository.AuditRepository
	freezes     *repository.FreezeRepository
	minimumWage decimal.Decimal
}

func NewAuditService(
	submissions *repository.SubmissionRepository,
	durations *repository.DurationRepository,
	audits *repository.AuditRepository,
	freezes *repository.FreezeRepository,
	minimumWage decimal.Decimal,
) *AuditService {
	return &AuditService{
		submissions: submissions,
		durations:   durations,
		audits:      audits,
		freezes:     freezes,
		minimumWage: minimumWage,
	}
}

// Run performs the audit pass for both environments, one after the other.
// Sandbox and production selections never mix.
func (s *AuditService) Run(ctx context.Context) error {
	for _, env := range constants.Environments {
		if err := s.runEnvironment(ctx, env); err != nil {
			return fmt.Errorf("audit pass (%s): %w", env, err)
		}
	}
	return nil
}

func (s *AuditService) runEnvironment(ctx context.Context, env constants.Environment) error {
	auditable, err := s.submissions.ListAuditable(ctx, env)
	if err != nil {
		return err
	}

	byGroup := make(map[string][]model.Submission)
	var groupIDs []string
	for _, submission := range auditable {
		groupID := submission.Task.TaskGroup.ID
		if _, seen := byGroup[groupID]; !seen {
			groupIDs = append(groupIDs, groupID)
		}
		byGroup[groupID] = append(byGroup[groupID], submission)
	}
	sort.Strings(groupIDs)

	// A failure in one task group must not abort the pass for the rest.
	for _, groupID := range groupIDs {
		if err := s.auditGroup(ctx, byGroup[groupID]); err != nil {
			log.Printf("audit: task group %s failed: %v", groupID, err)
		}
	}
	return nil
}

func (s *AuditService) auditGroup(ctx context.Context, submissions []model.Submission) error {
	group := submissions[0].Task.TaskGroup

	frozenIDs, err := s.freezes.FrozenWorkerIDs(ctx, group.RequesterID)
	if err != nil {
		return err
	}
	frozen := make(map[string]bool, len(frozenIDs))
	for _, id := range frozenIDs {
		frozen[id] = true
	}

	taskIDs := distinctTaskIDs(submissions)
	reports, err := s.durations.ReportsByTask(ctx, taskIDs, frozenIDs)
	if err != nil {
		return err
	}

	estimate := estimator.ForTaskGroup(group.Payment, reports)
	log.Printf("audit: task group %s: %d submissions, estimate %v", group.ID, len(submissions), estimate)

	for _, submission := range submissions {
		audit, err := s.audits.FindBySubmission(ctx, submission.ID)
		if err != nil {
			return err
		}
		if audit == nil {
			audit = &model.Audit{SubmissionID: submission.ID}
		}
		if audit.Closed || audit.Status == constants.AuditPaid {
			// Paid obligations are a closed ledger; never revisit.
			continue
		}

		previousTime := audit.EstimatedTime
		previousRate := audit.EstimatedRate
		previousStatus := audit.Status

		if estimate == nil {
			audit.EstimatedTime = nil
			audit.EstimatedRate = nil
		} else {
			estimatedTime := estimate.Time
			estimatedRate := estimate.Rate
			audit.EstimatedTime = &estimatedTime
			audit.EstimatedRate = &estimatedRate
		}

		if audit.IsUnderpaid(s.minimumWage) {
			audit.Status = constants.AuditUnpaid
		} else {
			audit.Status = constants.AuditNoPaymentNeeded
		}

		// A changed verdict voids any earlier notification, so the requester
		// sees the latest figures before a bonus fires. An identical rerun
		// leaves the grace clock running; resetting it on every pass would
		// keep the bonus pending forever.
		if previousStatus != audit.Status || !sameEstimate(previousTime, previousRate, audit) {
			audit.NotifiedAt = nil
		}
		audit.Frozen = frozen[submission.WorkerID]

		if err := s.audits.Save(ctx, audit); err != nil {
			return err
		}
	}
	return nil
}

func sameEstimate(previousTime *time.Duration, previousRate *decimal.Decimal, audit *model.Audit) bool {
	if (previousTime == nil) != (audit.EstimatedTime == nil) {
		return false
	}
	if (previousRate == nil) != (audit.EstimatedRate == nil) {
		return false
	}
	if previousTime != nil && *previousTime != *audit.EstimatedTime {
		return false
	}
	if previousRate != nil && !previousRate.Equal(*audit.EstimatedRate) {
		return false
	}
	return true
}

func distinctTaskIDs(submissions []model.Submission) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, submission := range submissions {
		if !seen[submission.TaskID] {
			seen[submission.TaskID] = true
			ids = append(ids, submission.TaskID)
		}
	}
	sort.Strings(ids)
	return ids
}
