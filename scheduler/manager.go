// Package scheduler runs periodic lifecycle jobs alongside the API.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"iris-api/monitor"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const challengeCloseJob = "challenge-close"

// ChallengeCloser completes LIVE challenges whose end date has passed.
type ChallengeCloser interface {
	CompleteExpired(ctx context.Context) (int, error)
}

// Manager owns the gocron scheduler and the jobs registered on it.
type Manager struct {
	scheduler gocron.Scheduler
	closer    ChallengeCloser
	interval  time.Duration
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewManager(closer ChallengeCloser, interval time.Duration, logger *zap.Logger) (*Manager, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		scheduler: s,
		closer:    closer,
		interval:  interval,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// RegisterJobs registers all jobs. Runs that overlap a slow previous run
// are rescheduled rather than stacked.
func (m *Manager) RegisterJobs() error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() { _, _ = m.CloseExpired(m.ctx) }),
		gocron.WithName(challengeCloseJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", challengeCloseJob, err)
	}
	return nil
}

func (m *Manager) Start() {
	m.scheduler.Start()
	m.logger.Info("scheduler started", zap.Duration("interval", m.interval))
}

// Stop cancels in-flight jobs and shuts the scheduler down.
func (m *Manager) Stop() error {
	m.cancel()
	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	m.logger.Info("scheduler stopped")
	return nil
}

// CloseExpired is the body of the challenge-close job.
func (m *Manager) CloseExpired(ctx context.Context) (int, error) {
	started := time.Now()
	closed, err := m.closer.CompleteExpired(ctx)
	monitor.RecordSchedulerRun(challengeCloseJob, err)
	if err != nil {
		m.logger.Error("challenge close job failed", zap.Int("closed", closed), zap.Error(err))
		return closed, err
	}
	if closed > 0 {
		m.logger.Info("closed expired challenges", zap.Int("closed", closed), zap.Duration("took", time.Since(started)))
	}
	return closed, nil
}
