package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
	model "fairwork.com/fairwork/internal/models"
	repository "fairwork.com/fairwork/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Requester{},
		&model.TaskGroup{},
		&model.Task{},
		&model.Worker{},
		&model.Submission{},
		&model.DurationReport{},
		&model.Audit{},
		&model.Freeze{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

type fixture struct {
	db          *gorm.DB
	requesters  *repository.RequesterRepository
	groups      *repository.TaskGroupRepository
	submissions *repository.SubmissionRepository
	durations   *repository.DurationRepository
	audits      *repository.AuditRepository
	freezes     *repository.FreezeRepository
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	return &fixture{
		db:          db,
		requesters:  repository.NewRequesterRepository(db),
		groups:      repository.NewTaskGroupRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		durations:   repository.NewDurationRepository(db),
		audits:      repository.NewAuditRepository(db),
		freezes:     repository.NewFreezeRepository(db),
	}
}

func (f *fixture) createRequester(t *testing.T, id, email string) *model.Requester {
	requester := &model.Requester{AccountID: id, AccessKey: "key", SecretKey: "secret", Email: email}
	if err := f.db.Create(requester).Error; err != nil {
		t.Fatalf("seeding requester: %v", err)
	}
	return requester
}

func (f *fixture) createGroup(t *testing.T, id, requesterID, payment string, env constants.Environment) *model.TaskGroup {
	group := &model.TaskGroup{
		ID:          id,
		Payment:     decimal.RequireFromString(payment),
		Environment: env,
		RequesterID: requesterID,
	}
	if err := f.db.Create(group).Error; err != nil {
		t.Fatalf("seeding task group: %v", err)
	}
	return group
}

func (f *fixture) createTask(t *testing.T, id, groupID string) *model.Task {
	task := &model.Task{ID: id, TaskGroupID: groupID}
	if err := f.db.Create(task).Error; err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}

func (f *fixture) createSubmission(t *testing.T, id, taskID, workerID string, status constants.SubmissionStatus) *model.Submission {
	var worker model.Worker
	if err := f.db.FirstOrCreate(&worker, model.Worker{ID: workerID}).Error; err != nil {
		t.Fatalf("seeding worker: %v", err)
	}

	submission := &model.Submission{ID: id, TaskID: taskID, WorkerID: workerID, Status: status}
	if err := f.db.Create(submission).Error; err != nil {
		t.Fatalf("seeding submission: %v", err)
	}
	return submission
}

func (f *fixture) report(t *testing.T, submissionID string, duration time.Duration) {
	if _, err := f.durations.Upsert(context.Background(), submissionID, duration); err != nil {
		t.Fatalf("seeding report: %v", err)
	}
}

func (f *fixture) auditFor(t *testing.T, submissionID string) *model.Audit {
	audit, err := f.audits.FindBySubmission(context.Background(), submissionID)
	if err != nil {
		t.Fatalf("loading audit: %v", err)
	}
	return audit
}

type bonusCall struct {
	workerID     string
	amount       decimal.Decimal
	submissionID string
	reason       string
	token        string
}

type notifyCall struct {
	workerID string
	subject  string
	message  string
}

// fakeClient scripts the marketplace capability for the service tests.
type fakeClient struct {
	bonusErr   error
	statusByID map[string]string
	statusErr  error

	bonuses       []bonusCall
	notifications []notifyCall
}

func (f *fakeClient) SubmissionStatus(ctx context.Context, submissionID string) (string, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.statusByID[submissionID], nil
}

func (f *fakeClient) TaskReward(ctx context.Context, taskID string) (decimal.Decimal, error) {
	return decimal.RequireFromString("1.00"), nil
}

func (f *fakeClient) SendBonus(ctx context.Context, workerID string, amount decimal.Decimal, submissionID, reason, token string) error {
	if f.bonusErr != nil {
		return f.bonusErr
	}
	f.bonuses = append(f.bonuses, bonusCall{
		workerID:     workerID,
		amount:       amount,
		submissionID: submissionID,
		reason:       reason,
		token:        token,
	})
	return nil
}

func (f *fakeClient) NotifyWorker(ctx context.Context, workerID, subject, message string) error {
	f.notifications = append(f.notifications, notifyCall{workerID: workerID, subject: subject, message: message})
	return nil
}

func fixedPool(client marketplace.Client) *marketplace.Pool {
	return marketplace.NewPool(func(requester *model.Requester, env constants.Environment) marketplace.Client {
		return client
	})
}

type email struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	err    error
	emails []email
}

func (f *fakeMailer) SendEmail(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.emails = append(f.emails, email{to: to, subject: subject, body: body})
	return nil
}
