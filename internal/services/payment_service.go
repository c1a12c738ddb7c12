package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
	model "fairwork.com/fairwork/internal/models"
	"fairwork.com/fairwork/internal/notify"
	repository "fairwork.com/fairwork/internal/repositories"
)

// PaymentService walks Requester → Worker → TaskGroup over pending audits,
// applies the notification grace period, and disburses one consolidated bonus
// per (requester, worker) pair with a deterministic idempotency token.
type PaymentService struct {
	audits      *repository.AuditRepository
	pool        *marketplace.Pool
	mailer      notify.Mailer
	minimumWage decimal.Decimal
	gracePeriod time.Duration
	feeRate     decimal.Decimal
	now         func() time.Time
}

func NewPaymentService(
	audits *repository.AuditRepository,
	pool *marketplace.Pool,
	mailer notify.Mailer,
	minimumWage decimal.Decimal,
	gracePeriod time.Duration,
	feeRate decimal.Decimal,
) *PaymentService {
	return &PaymentService{
		audits:      audits,
		pool:        pool,
		mailer:      mailer,
		minimumWage: minimumWage,
		gracePeriod: gracePeriod,
		feeRate:     feeRate,
		now:         time.Now,
	}
}

// Run performs the payment pass for both environments: first notify requesters
// of newly pending bonuses, then pay out those whose grace period has elapsed.
func (s *PaymentService) Run(ctx context.Context) error {
	for _, env := range constants.Environments {
		log.Printf("payment: environment %s", env)
		if err := s.notifyRequesters(ctx, env); err != nil {
			return fmt.Errorf("notify pass (%s): %w", env, err)
		}
		if err := s.payAudits(ctx, env); err != nil {
			return fmt.Errorf("pay pass (%s): %w", env, err)
		}
	}
	return nil
}

func (s *PaymentService) notifyRequesters(ctx context.Context, env constants.Environment) error {
	pending, err := s.audits.ListUnnotified(ctx, env)
	if err != nil {
		return err
	}

	for _, batch := range groupByRequesterWorker(pending) {
		if err := s.notifyRequester(ctx, batch); err != nil {
			log.Printf("payment: notify requester %s failed: %v", batch.requester.AccountID, err)
		}
	}
	return nil
}

func (s *PaymentService) notifyRequester(ctx context.Context, batch requesterBatch) error {
	grandTotal := decimal.Zero
	var workerLines []string
	var ids []uint

	for _, workerAudits := range batch.workers {
		bonus := ComputeBonus(workerAudits.audits, s.minimumWage)
		grandTotal = grandTotal.Add(bonus.Total)

		line := fmt.Sprintf("Worker %s: total bonus $%s\n", workerAudits.worker.ID, bonus.Total.StringFixed(2))
		for _, breakdown := range bonus.Breakdowns {
			line += breakdownLine(breakdown)
		}
		workerLines = append(workerLines, line)
		ids = append(ids, auditIDs(workerAudits.audits)...)
	}

	if batch.requester.Email == "" {
		return errors.New("requester has no email on file")
	}

	subject := requesterDigestSubject(grandTotal)
	body := requesterDigestMessage(s.minimumWage, s.gracePeriod.Hours(), workerLines)
	if err := s.mailer.SendEmail(batch.requester.Email, subject, body); err != nil {
		// Leave the audits un-notified so the next run retries; the grace
		// clock must not start on a message nobody received.
		return err
	}

	log.Printf("payment: notified requester %s of $%s across %d audits",
		batch.requester.AccountID, grandTotal.StringFixed(2), len(ids))
	return s.audits.SetNotified(ctx, ids, s.now().UTC())
}

func (s *PaymentService) payAudits(ctx context.Context, env constants.Environment) error {
	graceLimit := s.now().UTC().Add(-s.gracePeriod)
	payable, err := s.audits.ListPayable(ctx, env, graceLimit)
	if err != nil {
		return err
	}

	for _, batch := range groupByRequesterWorker(payable) {
		shortfall := decimal.Zero
		client := s.pool.Get(batch.requester, env)

		for _, workerAudits := range batch.workers {
			owed, err := s.payWorker(ctx, client, env, workerAudits)
			if err != nil {
				// One worker's failure must not sink the requester's pass.
				log.Printf("payment: worker %s under requester %s failed: %v",
					workerAudits.worker.ID, batch.requester.AccountID, err)
				continue
			}
			shortfall = shortfall.Add(owed)
		}

		if shortfall.IsPositive() {
			s.notifyShortfall(batch.requester, shortfall)
		}
	}
	return nil
}

// payWorker sends one consolidated bonus covering all of a worker's pending
// audits for one requester. Returns the amount still owed when the requester
// is out of funds.
func (s *PaymentService) payWorker(ctx context.Context, client marketplace.Client, env constants.Environment, workerAudits workerBatch) (decimal.Decimal, error) {
	bonus := ComputeBonus(workerAudits.audits, s.minimumWage)
	if !bonus.Total.IsPositive() {
		return decimal.Zero, nil
	}

	worker := workerAudits.worker
	representative := bonus.Representative.SubmissionID
	token := BonusToken(env, representative, bonus.Total)
	message := workerBonusMessage(s.minimumWage, bonus)
	ids := auditIDs(workerAudits.audits)

	log.Printf("payment: bonusing worker %s $%s on submission %s", worker.ID, bonus.Total.StringFixed(2), representative)

	err := client.SendBonus(ctx, worker.ID, bonus.Total, representative, message, token)
	switch {
	case err == nil:
		return decimal.Zero, s.audits.MarkPaid(ctx, ids)
	case errors.Is(err, marketplace.ErrDuplicateToken):
		// An identical bonus already went out, likely a retried run that
		// crashed before recording the payment. Confirmed paid.
		log.Printf("payment: identical bonus already paid for %s, marking paid", representative)
		return decimal.Zero, s.audits.MarkPaid(ctx, ids)
	case errors.Is(err, marketplace.ErrInsufficientFunds):
		log.Printf("payment: requester out of funds for worker %s, notifying", worker.ID)
		subject := insufficientFundsWorkerSubject(bonus.Total)
		body := insufficientFundsWorkerMessage(s.minimumWage, bonus.Total)
		if notifyErr := client.NotifyWorker(ctx, worker.ID, subject, body); notifyErr != nil {
			log.Printf("payment: worker notification failed: %v", notifyErr)
		}
		return bonus.Total, nil
	default:
		return decimal.Zero, err
	}
}

func (s *PaymentService) notifyShortfall(requester *model.Requester, shortfall decimal.Decimal) {
	if requester.Email == "" {
		log.Printf("payment: requester %s is short $%s but has no email on file",
			requester.AccountID, shortfall.StringFixed(2))
		return
	}

	deposit := shortfall.Mul(decimal.NewFromInt(1).Add(s.feeRate)).RoundUp(2)
	subject := insufficientFundsRequesterSubject(deposit)
	body := insufficientFundsRequesterMessage(s.minimumWage, shortfall, deposit)
	if err := s.mailer.SendEmail(requester.Email, subject, body); err != nil {
		log.Printf("payment: shortfall email to %s failed: %v", requester.AccountID, err)
	}
}

// BonusToken derives the idempotency token for one consolidated bonus. It is a
// pure function of durable state, so a retried run converges on the same token
// and the marketplace refuses to pay twice. The environment is part of the
// namespace: colliding sandbox and production ids never share a token.
func BonusToken(env constants.Environment, submissionID string, total decimal.Decimal) string {
	return fmt.Sprintf("%s:%s:%s", env, submissionID, total.StringFixed(2))
}

type requesterBatch struct {
	requester *model.Requester
	workers   []workerBatch
}

type workerBatch struct {
	worker *model.Worker
	audits []model.Audit
}

// groupByRequesterWorker builds the explicit Requester → Worker grouping,
// sorted by id at both levels so digests and payment order are deterministic.
func groupByRequesterWorker(audits []model.Audit) []requesterBatch {
	byRequester := make(map[string]map[string][]model.Audit)
	requesters := make(map[string]*model.Requester)
	workers := make(map[string]*model.Worker)

	for _, audit := range audits {
		requester := audit.Submission.Task.TaskGroup.Requester
		worker := audit.Submission.Worker
		requesters[requester.AccountID] = requester
		workers[worker.ID] = worker

		if byRequester[requester.AccountID] == nil {
			byRequester[requester.AccountID] = make(map[string][]model.Audit)
		}
		byRequester[requester.AccountID][worker.ID] = append(byRequester[requester.AccountID][worker.ID], audit)
	}

	requesterIDs := sortedKeys(byRequester)
	batches := make([]requesterBatch, 0, len(requesterIDs))
	for _, requesterID := range requesterIDs {
		batch := requesterBatch{requester: requesters[requesterID]}
		for _, workerID := range sortedKeys(byRequester[requesterID]) {
			batch.workers = append(batch.workers, workerBatch{
				worker: workers[workerID],
				audits: byRequester[requesterID][workerID],
			})
		}
		batches = append(batches, batch)
	}
	return batches
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func auditIDs(audits []model.Audit) []uint {
	ids := make([]uint, 0, len(audits))
	for _, audit := range audits {
		ids = append(ids, audit.ID)
	}
	return ids
}
