// Package scheduler fires reminder batches at configured cron slots.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/internal/reminder"
)

// Dispatcher runs one reminder batch.
type Dispatcher interface {
	DispatchToAllGroups(ctx context.Context, now time.Time) (reminder.BatchResult, error)
}

// Scheduler manages the cron entries of the reminder slots.
type Scheduler struct {
	cron       *cron.Cron
	dispatcher Dispatcher
	logger     *slog.Logger
	loc        *time.Location
	ctx        context.Context
	cancel     context.CancelFunc
	entries    map[string]cron.EntryID // slot name → cron entry
}

// New creates a Scheduler evaluating slots in loc. An invalid slot
// expression is an error.
func New(slots []config.Slot, loc *time.Location, dispatcher Dispatcher, logger *slog.Logger) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		dispatcher: dispatcher,
		logger:     logger,
		loc:        loc,
		ctx:        ctx,
		cancel:     cancel,
		entries:    make(map[string]cron.EntryID),
	}

	for _, slot := range slots {
		entryID, err := s.cron.AddFunc(slot.Cron, func() { s.run(slot.Name) })
		if err != nil {
			cancel()
			return nil, fmt.Errorf("invalid cron schedule %q for slot %q: %w", slot.Cron, slot.Name, err)
		}
		s.entries[slot.Name] = entryID
		logger.Info("Reminder slot scheduled", "slot", slot.Name, "schedule", slot.Cron, "location", loc.String())
	}
	return s, nil
}

// Start starts the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Reminder scheduler started", "slots", len(s.entries))
}

// Stop stops the scheduler, cancels running batches and waits for them.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Reminder scheduler stopped")
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

// Next returns the next activation time of a slot.
func (s *Scheduler) Next(slot string) (time.Time, bool) {
	id, ok := s.entries[slot]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(time.Now().In(s.loc)), true
}

func (s *Scheduler) run(slot string) {
	batch, err := s.dispatcher.DispatchToAllGroups(s.ctx, time.Now())
	if err != nil {
		s.logger.Warn("Scheduled reminder failed", "slot", slot, "run_id", batch.RunID, "error", err)
		return
	}
	s.logger.Info("Scheduled reminder finished",
		"slot", slot,
		"run_id", batch.RunID,
		"sent", batch.Sent,
		"failed", batch.Failed,
	)
}
