// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	"go.uber.org/zap"
)

// Job is a named periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives a set of jobs on their intervals until stopped.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{jobs: jobs, log: logger, stopCh: make(chan struct{})}
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(job)
		r.log.Info("job started", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
	}
}

// Stop signals all jobs to stop and waits for them to finish.
func (r *Runner) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

func (r *Runner) loop(job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			if err := job.Run(ctx); err != nil {
				r.log.Error("job run failed", zap.String("job", job.Name), zap.Error(err))
			}
			cancel()
		}
	}
}

// ReconcileJob creates a job that sweeps all events and re-derives their
// denormalized attendee/accepted sets from the membership records. It is the
// scheduled safety net for the divergence a crash between the two writes can
// leave behind.
func ReconcileJob(events *eventstore.Store, ctrl *membership.Controller, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "membership-reconcile",
		Interval: interval,
		Run: func(ctx context.Context) error {
			all, err := events.List(ctx, eventstore.ListFilter{})
			if err != nil {
				return err
			}
			for _, ev := range all {
				if err := ctrl.Reconcile(ctx, ev.ID); err != nil {
					logger.Warn("reconcile failed for event",
						zap.String("event_id", ev.ID.Hex()),
						zap.Error(err))
				}
			}
			return nil
		},
	}
}
