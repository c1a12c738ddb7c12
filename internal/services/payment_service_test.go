package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
)

func newPaymentService(f *fixture, client *fakeClient, mailer *fakeMailer, gracePeriod time.Duration) *PaymentService {
	return NewPaymentService(
		f.audits,
		fixedPool(client),
		mailer,
		decimal.RequireFromString("11.00"),
		gracePeriod,
		decimal.RequireFromString("0.20"),
	)
}

// seedUnderpaidGroup leaves worker-1 owed $2.40 (sub-1, sub-3) and worker-2
// owed $1.20 (sub-2) once the audit pass has run.
func seedAuditedGroup(t *testing.T, f *fixture) {
	seedUnderpaidGroup(t, f)
	if err := newAuditService(f).Run(context.Background()); err != nil {
		t.Fatalf("audit run failed: %v", err)
	}
}

func TestPaymentService_NotifyPassStampsGraceClock(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	client := &fakeClient{}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 48*time.Hour)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	if len(mailer.emails) != 1 {
		t.Fatalf("expected one digest email, got %d", len(mailer.emails))
	}
	digest := mailer.emails[0]
	if digest.to != "req@example.com" {
		t.Errorf("digest sent to %s", digest.to)
	}
	if !strings.Contains(digest.subject, "$3.60") {
		t.Errorf("expected the digest subject to carry the $3.60 grand total, got %q", digest.subject)
	}
	if !strings.Contains(digest.body, "48 hours") {
		t.Errorf("expected the digest to state the grace period, got %q", digest.body)
	}

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		if f.auditFor(t, id).NotifiedAt == nil {
			t.Errorf("expected %s to be stamped as notified", id)
		}
	}

	// The grace period has not elapsed, so nothing is disbursed yet.
	if len(client.bonuses) != 0 {
		t.Errorf("expected no bonuses before the grace period elapses, got %d", len(client.bonuses))
	}
}

func TestPaymentService_FailedDigestLeavesClockUnstarted(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	client := &fakeClient{}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	service := newPaymentService(f, client, mailer, 0)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	// The grace clock must not start on a digest nobody received, and no
	// money moves until it has.
	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		if f.auditFor(t, id).NotifiedAt != nil {
			t.Errorf("expected %s to stay un-notified after a failed digest", id)
		}
	}
	if len(client.bonuses) != 0 {
		t.Errorf("expected no bonuses, got %d", len(client.bonuses))
	}
}

func TestPaymentService_PaysOneConsolidatedBonusPerWorker(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	client := &fakeClient{}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 0)

	ctx := context.Background()
	if err := service.Run(ctx); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	if len(client.bonuses) != 2 {
		t.Fatalf("expected one bonus per worker, got %d", len(client.bonuses))
	}

	first := client.bonuses[0]
	if first.workerID != "worker-1" || !first.amount.Equal(decimal.RequireFromString("2.40")) {
		t.Errorf("expected worker-1 to receive $2.40, got %s for %s", first.amount, first.workerID)
	}
	if first.token != "production:sub-1:2.40" {
		t.Errorf("unexpected idempotency token %q", first.token)
	}

	second := client.bonuses[1]
	if second.workerID != "worker-2" || !second.amount.Equal(decimal.RequireFromString("1.20")) {
		t.Errorf("expected worker-2 to receive $1.20, got %s for %s", second.amount, second.workerID)
	}
	if second.token != "production:sub-2:1.20" {
		t.Errorf("unexpected idempotency token %q", second.token)
	}

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		audit := f.auditFor(t, id)
		if audit.Status != constants.AuditPaid || !audit.Closed {
			t.Errorf("expected %s paid and closed, got %s closed=%v", id, audit.Status, audit.Closed)
		}
	}

	// A second run finds nothing left to notify or pay.
	if err := service.Run(ctx); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(client.bonuses) != 2 {
		t.Errorf("expected no further bonuses, got %d", len(client.bonuses))
	}
	if len(mailer.emails) != 1 {
		t.Errorf("expected no further emails, got %d", len(mailer.emails))
	}
}

func TestPaymentService_DailyCycleEventuallyPaysAfterGrace(t *testing.T) {
	f := newFixture(t)
	seedUnderpaidGroup(t, f)
	auditor := newAuditService(f)

	client := &fakeClient{}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 48*time.Hour)

	// The scheduled job runs audit then payment once a day. With no new
	// reports arriving, the requester is told once, the grace period runs
	// down, and the bonus goes out on day two.
	ctx := context.Background()
	start := time.Now().UTC()
	paidOnDay := -1
	for day := 0; day < 4; day++ {
		now := start.Add(time.Duration(day) * 24 * time.Hour)
		service.now = func() time.Time { return now }

		if err := auditor.Run(ctx); err != nil {
			t.Fatalf("day %d audit run failed: %v", day, err)
		}
		if err := service.Run(ctx); err != nil {
			t.Fatalf("day %d payment run failed: %v", day, err)
		}

		if paidOnDay < 0 && len(client.bonuses) > 0 {
			paidOnDay = day
		}
	}

	if paidOnDay != 2 {
		t.Fatalf("expected the bonus on day 2 when the 48h grace elapsed, paid on day %d", paidOnDay)
	}
	if len(client.bonuses) != 2 {
		t.Errorf("expected one bonus per worker, got %d", len(client.bonuses))
	}
	if len(mailer.emails) != 1 {
		t.Errorf("expected a single digest across the whole cycle, got %d", len(mailer.emails))
	}
	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		audit := f.auditFor(t, id)
		if audit.Status != constants.AuditPaid || !audit.Closed {
			t.Errorf("expected %s paid and closed, got %s", id, audit.Status)
		}
	}
}

func TestPaymentService_DuplicateTokenCountsAsPaid(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	client := &fakeClient{bonusErr: marketplace.ErrDuplicateToken}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 0)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	// The marketplace already holds an identical bonus from an earlier crashed
	// run, so the audits close without a second disbursement.
	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		audit := f.auditFor(t, id)
		if audit.Status != constants.AuditPaid || !audit.Closed {
			t.Errorf("expected %s confirmed paid, got %s", id, audit.Status)
		}
	}
	if len(client.notifications) != 0 {
		t.Errorf("expected no worker notifications, got %d", len(client.notifications))
	}
}

func TestPaymentService_InsufficientFundsLeavesAuditsOpen(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	client := &fakeClient{bonusErr: marketplace.ErrInsufficientFunds}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 0)

	if err := service.Run(context.Background()); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	for _, id := range []string{"sub-1", "sub-2", "sub-3"} {
		audit := f.auditFor(t, id)
		if audit.Status != constants.AuditUnpaid || audit.Closed {
			t.Errorf("expected %s to stay open for a retry, got %s closed=%v", id, audit.Status, audit.Closed)
		}
	}

	// Both workers are told why their bonus is stuck.
	if len(client.notifications) != 2 {
		t.Fatalf("expected both workers notified, got %d", len(client.notifications))
	}
	if client.notifications[0].workerID != "worker-1" || client.notifications[1].workerID != "worker-2" {
		t.Error("expected worker notifications in worker order")
	}

	// The requester gets the digest plus a deposit request covering the $3.60
	// shortfall with the 20% marketplace fee on top.
	if len(mailer.emails) != 2 {
		t.Fatalf("expected digest and deposit emails, got %d", len(mailer.emails))
	}
	deposit := mailer.emails[1]
	if !strings.Contains(deposit.subject, "$4.32") {
		t.Errorf("expected the deposit subject to ask for $4.32, got %q", deposit.subject)
	}
	if !strings.Contains(deposit.body, "$3.60") {
		t.Errorf("expected the deposit body to state the $3.60 owed, got %q", deposit.body)
	}
}

func TestPaymentService_FrozenAuditsAreNeverPaid(t *testing.T) {
	f := newFixture(t)
	seedAuditedGroup(t, f)

	ctx := context.Background()
	if err := f.audits.SetFrozenForPair(ctx, "req-1", "worker-2", true); err != nil {
		t.Fatalf("freezing pair: %v", err)
	}

	client := &fakeClient{}
	mailer := &fakeMailer{}
	service := newPaymentService(f, client, mailer, 0)

	if err := service.Run(ctx); err != nil {
		t.Fatalf("payment run failed: %v", err)
	}

	if len(client.bonuses) != 1 || client.bonuses[0].workerID != "worker-1" {
		t.Fatalf("expected only worker-1 to be paid, got %+v", client.bonuses)
	}

	frozen := f.auditFor(t, "sub-2")
	if frozen.Status != constants.AuditUnpaid || frozen.Closed {
		t.Error("expected the frozen audit to stay open and unpaid")
	}
}
