package jobs

import (
	"context"
	"fmt"

	"anoa.com/elearning/pkg/apperror"
	"anoa.com/elearning/pkg/logger"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
	log  *logger.Logger
	ctx  context.Context
}

func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		cron: cron.New(),
		log:  log.With("component", "jobs"),
		ctx:  context.Background(),
	}
}

// Register adds job to the scheduler. Jobs with a schedule start firing once
// Start is called.
func (s *Scheduler) Register(job Job) error {
	if spec := job.Schedule(); spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.execute(s.ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w: %w", job.Name(), apperror.ErrInvalidInput, err)
		}
		s.log.Info("job scheduled", "job", job.Name(), "schedule", spec)
	} else {
		s.log.Info("job registered for on-demand runs", "job", job.Name())
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Start runs the cron loop. Scheduled jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.log.Info("job scheduler started", "jobs", len(s.jobs))
}

// Stop halts scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("job scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("job scheduler stopped with jobs still running")
	}
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.execute(ctx, job)
		}
	}
	return fmt.Errorf("job %q: %w", name, apperror.ErrNotFound)
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

func (s *Scheduler) execute(ctx context.Context, job Job) error {
	s.log.Info("job started", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", "job", job.Name(), "error", err)
		return err
	}
	s.log.Info("job completed", "job", job.Name())
	return nil
}
