package cmd

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	config "fairwork.com/fairwork/internal/configs"
	"fairwork.com/fairwork/internal/marketplace"
	"fairwork.com/fairwork/internal/notify"
	"fairwork.com/fairwork/internal/queue"
	repository "fairwork.com/fairwork/internal/repositories"
)

// app holds the wiring every command shares: config, database, repositories,
// and the per-run marketplace connection pool.
type app struct {
	cfg         config.Config
	db          *gorm.DB
	requesters  *repository.RequesterRepository
	groups      *repository.TaskGroupRepository
	submissions *repository.SubmissionRepository
	durations   *repository.DurationRepository
	audits      *repository.AuditRepository
	freezes     *repository.FreezeRepository
	pool        *marketplace.Pool
	mailer      notify.Mailer
}

func newApp() *app {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()
	db := config.New(cfg.DatabaseDSN)

	pool := marketplace.NewPool(marketplace.NewHTTPFactory(marketplace.Endpoints{
		Production: cfg.MarketplaceEndpoint,
		Sandbox:    cfg.MarketplaceSandbox,
	}))

	return &app{
		cfg:         cfg,
		db:          db,
		requesters:  repository.NewRequesterRepository(db),
		groups:      repository.NewTaskGroupRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		durations:   repository.NewDurationRepository(db),
		audits:      repository.NewAuditRepository(db),
		freezes:     repository.NewFreezeRepository(db),
		pool:        pool,
		mailer:      notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.AdminEmail),
	}
}

// withRunLock runs a batch pass under the redis run lock when one is
// configured; a concurrently held lock skips the run instead of racing it.
func (a *app) withRunLock(ctx context.Context, ttl time.Duration, run func(context.Context) error) error {
	if !a.cfg.RunLockEnabled {
		return run(ctx)
	}

	redisClient := config.NewRedisClient(a.cfg.RedisAddr)
	defer redisClient.Close()

	lock := queue.NewRedisRunLock(redisClient, a.cfg.RedisLockKey, ttl)
	if err := lock.Acquire(ctx); err != nil {
		if errors.Is(err, queue.ErrLockHeld) {
			log.Println("another batch run is in progress, skipping")
			return nil
		}
		return err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Printf("releasing run lock failed: %v", err)
		}
	}()

	return run(ctx)
}
