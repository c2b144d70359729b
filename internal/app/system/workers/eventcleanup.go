// internal/app/system/workers/eventcleanup.go
package workers

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// EventCleanup is a background worker that purges past events once per day
// at local midnight in a fixed timezone. Deleting an event cascades to its
// membership records; any membership operation racing a deletion observes
// NotFound rather than corrupting state.
type EventCleanup struct {
	events   *eventstore.Store
	auditLog *auditlog.Logger
	log      *zap.Logger
	loc      *time.Location
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewEventCleanup creates the cleanup worker. The timezone fixes the
// midnight boundary the purge uses regardless of server locale.
func NewEventCleanup(events *eventstore.Store, auditLog *auditlog.Logger, logger *zap.Logger, loc *time.Location) *EventCleanup {
	return &EventCleanup{
		events:   events,
		auditLog: auditLog,
		log:      logger,
		loc:      loc,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the daily cleanup loop.
func (w *EventCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("event cleanup worker started", zap.String("timezone", w.loc.String()))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *EventCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("event cleanup worker stopped")
}

func (w *EventCleanup) run() {
	defer w.wg.Done()

	for {
		wait := time.Until(w.nextMidnight(time.Now()))
		timer := time.NewTimer(wait)
		select {
		case <-w.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			w.cleanup()
		}
	}
}

// nextMidnight returns the upcoming midnight boundary in the worker's
// timezone.
func (w *EventCleanup) nextMidnight(now time.Time) time.Time {
	local := now.In(w.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, w.loc)
}

// Cutoff returns the purge boundary for the given instant: events strictly
// before that day's local midnight are past and get deleted.
func (w *EventCleanup) Cutoff(now time.Time) time.Time {
	local := now.In(w.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc)
}

func (w *EventCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := w.Cutoff(time.Now())
	count, err := w.events.DeletePastEvents(ctx, cutoff)
	if err != nil {
		w.log.Error("failed to delete past events", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("deleted past events",
			zap.Int64("count", count),
			zap.Time("cutoff", cutoff))
		w.auditLog.Record(ctx, nil, audit.ActionCleanupEvents, "events", "", map[string]string{
			"deleted": strconv.FormatInt(count, 10),
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}
}
