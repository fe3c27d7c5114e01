package reminders

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/logger"
)

// Scheduler runs jobs one after another on a fixed interval. It backs the
// optional in-process schedule; the cron endpoints call the same jobs.
type Scheduler struct {
	interval time.Duration
	jobs     []Job
	log      *zap.Logger

	wg sync.WaitGroup
}

func NewScheduler(interval time.Duration, l *zap.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{interval: interval, jobs: jobs, log: logger.OrNop(l)}
}

// Start runs the jobs every interval until ctx is cancelled. Wait blocks
// until the loop has exited.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.log.Info("reminder scheduler started", zap.Duration("interval", s.interval))
		for {
			select {
			case <-ctx.Done():
				s.log.Info("reminder scheduler stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RunOnce runs each job in order and logs its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		res, err := job.Run(ctx)
		if err != nil {
			s.log.Error("reminder job failed", zap.String("job", job.Name()), zap.Error(err))
			continue
		}
		s.log.Debug("reminder job finished",
			zap.String("job", job.Name()),
			zap.Int("sent", res.Sent),
			zap.Int("errors", res.Errors))
	}
}
