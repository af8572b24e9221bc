// Package worker replays progress writes that failed during a session save.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/speechcoach/backend/internal/models"
	"github.com/speechcoach/backend/pkg/queue"
)

// JobSource is the replay queue.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job, cause error) error
}

// ProgressStore writes progress entries.
type ProgressStore interface {
	CreateProgress(ctx context.Context, p *models.ProgressEntry) error
}

// ProgressReplayer drains the progress replay queue into the store.
type ProgressReplayer struct {
	store       ProgressStore
	queue       JobSource
	pollTimeout time.Duration
	backoff     time.Duration
	logger      *zap.Logger
}

// NewProgressReplayer creates a replayer using the queue's default backoff.
func NewProgressReplayer(store ProgressStore, q JobSource, logger *zap.Logger) *ProgressReplayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressReplayer{store: store, queue: q, pollTimeout: 5 * time.Second, backoff: queue.RetryBackoff, logger: logger}
}

// SetBackoff changes the pause after a failed job.
func (p *ProgressReplayer) SetBackoff(d time.Duration) { p.backoff = d }

// Process executes one replay job.
func (p *ProgressReplayer) Process(ctx context.Context, job *queue.Job) error {
	entry, err := queue.DecodeProgress(job)
	if err != nil {
		return err
	}
	if err := p.store.CreateProgress(ctx, &entry); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	p.logger.Info("progress replayed",
		zap.String("job_id", job.ID),
		zap.String("session_id", entry.SessionID.String()),
		zap.Int("attempt", job.Attempt),
	)
	return nil
}

// Run loops until ctx is cancelled: dequeue, process, retry on error.
func (p *ProgressReplayer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("progress worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job, err); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ProgressReplayer) sleep(ctx context.Context) {
	if p.backoff <= 0 {
		return
	}
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
