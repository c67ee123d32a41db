// Package scheduler runs periodic catalog jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// enqueueTimeout bounds how long a cron tick may wait on the task queue.
const enqueueTimeout = 30 * time.Second

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SnapshotEnqueuer queues a catalog export. *tasks.Client implements it.
type SnapshotEnqueuer interface {
	EnqueueExport(ctx context.Context, format string) (string, error)
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// SnapshotScheduler enqueues catalog snapshot exports on a cron schedule.
// The export itself runs on the task queue, not on the cron goroutine.
type SnapshotScheduler struct {
	schedule string
	enqueuer SnapshotEnqueuer
	logger   *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
}

// NewSnapshotScheduler creates a scheduler for the given cron expression.
func NewSnapshotScheduler(schedule string, enqueuer SnapshotEnqueuer, logger *zap.Logger) (*SnapshotScheduler, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	if enqueuer == nil {
		return nil, fmt.Errorf("snapshot enqueuer not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotScheduler{
		schedule: schedule,
		enqueuer: enqueuer,
		logger:   logger.Named("scheduler"),
		cron:     cron.New(cron.WithParser(parser)),
	}, nil
}

// Start registers the snapshot job and starts the cron loop. The scheduler
// stops by itself when ctx is cancelled.
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("Scheduled snapshot failed to enqueue", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.running = true

	s.logger.Info("Snapshot scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(entryID).Next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the cron loop and waits for an in-flight tick to finish.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.running = false

	s.logger.Info("Snapshot scheduler stopped")
}

// RunNow enqueues a snapshot immediately and returns the task id.
func (s *SnapshotScheduler) RunNow(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()

	id, err := s.enqueuer.EnqueueExport(ctx, "")
	if err != nil {
		return "", err
	}
	s.logger.Info("Snapshot enqueued", zap.String("task_id", id))
	return id, nil
}

// IsRunning returns whether the scheduler is active
func (s *SnapshotScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// NextRun returns when the next snapshot will be enqueued, or nil when stopped.
func (s *SnapshotScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}
