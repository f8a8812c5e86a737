// Package reminder notifies groups about members who have not reported yet.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/workpilot/internal/calculator"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/render"
)

// DefaultSendTimeout bounds a single group's dispatch in a batch.
const DefaultSendTimeout = 10 * time.Second

// Kind selects the reminder wording.
type Kind string

const (
	// Manual reminders are requested from a chat or the admin API.
	Manual Kind = "manual"
	// Scheduled reminders are fired by the scheduler.
	Scheduled Kind = "scheduled"
)

// Roster lists groups and their members.
type Roster interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID int64) ([]models.Member, error)
}

// Ledger loads a period's reports.
type Ledger interface {
	LoadPeriod(ctx context.Context, groupID int64, periodID string) (*models.Ledger, error)
}

// Sender delivers a message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Result describes one group's dispatch.
type Result struct {
	GroupID      int64
	Period       string
	Pending      []models.PendingMember
	AllSubmitted bool
	Sent         bool
}

// BatchResult describes a run over every group.
type BatchResult struct {
	RunID   string
	Period  string
	Groups  int
	Sent    int
	Skipped int
	Failed  int
	// Errors maps failed group ids to their error.
	Errors map[int64]error
}

// Dispatcher sends reminders.
type Dispatcher struct {
	roster      Roster
	ledger      Ledger
	sender      Sender
	resolver    *period.Resolver
	logger      *slog.Logger
	metrics     *metrics.Metrics
	sendTimeout time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records dispatches on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithSendTimeout bounds each group's dispatch in a batch.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(roster Roster, ledger Ledger, sender Sender, resolver *period.Resolver, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		roster:      roster,
		ledger:      ledger,
		sender:      sender,
		resolver:    resolver,
		logger:      logger,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Text builds the reminder message for pending members.
func Text(kind Kind, pending []models.PendingMember) string {
	mentions := render.Mentions(pending)
	if kind == Scheduled {
		return "⏰ *自动提醒*\n\n以下同学还未提交本周周报：\n\n" + mentions + "\n\n请尽快提交周报！"
	}
	return "⏰ *周报提醒*\n\n以下同学还未提交本周周报，请尽快提交：\n\n" + mentions +
		"\n\n请使用 /submit 命令提交周报，或发送包含「周报」的消息。"
}

// DispatchToGroup reminds the pending members of a group for periodID.
// Nothing is sent when everyone has submitted.
func (d *Dispatcher) DispatchToGroup(ctx context.Context, groupID int64, periodID string, kind Kind) (Result, error) {
	res := Result{GroupID: groupID, Period: periodID}

	members, err := d.roster.ListMembers(ctx, groupID)
	if err != nil {
		return res, fmt.Errorf("failed to list members: %w", err)
	}
	ledger, err := d.ledger.LoadPeriod(ctx, groupID, periodID)
	if err != nil {
		return res, fmt.Errorf("failed to load ledger: %w", err)
	}
	res.Period = ledger.Period

	res.Pending = calculator.Pending(members, ledger)
	if len(res.Pending) == 0 {
		res.AllSubmitted = true
		d.logger.Info("All members submitted", "group_id", groupID, "period", res.Period)
		return res, nil
	}

	if err := d.sender.SendMessage(ctx, groupID, Text(kind, res.Pending)); err != nil {
		d.metrics.ReminderFailed(string(kind))
		return res, fmt.Errorf("%w: failed to send reminder to %d: %w", models.ErrTransport, groupID, err)
	}
	res.Sent = true
	d.metrics.ReminderSent(string(kind))
	d.logger.Info("Reminder sent", "group_id", groupID, "period", res.Period, "kind", kind, "pending", len(res.Pending))
	return res, nil
}

// DispatchToAllGroups sends a scheduled reminder to every registered group
// for the period containing now. A failing group is logged and counted and
// the batch moves on. Cancelling ctx stops the batch before the next group.
func (d *Dispatcher) DispatchToAllGroups(ctx context.Context, now time.Time) (BatchResult, error) {
	start := time.Now()
	defer d.metrics.ObserveBatch(start)

	batch := BatchResult{
		RunID:  uuid.NewString(),
		Period: d.resolver.Resolve(now),
		Errors: make(map[int64]error),
	}
	logger := d.logger.With("run_id", batch.RunID, "period", batch.Period)

	groups, err := d.roster.ListGroups(ctx)
	if err != nil {
		return batch, fmt.Errorf("failed to list groups: %w", err)
	}
	logger.Info("Reminder batch started", "groups", len(groups))

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			logger.Warn("Reminder batch cancelled", "dispatched", batch.Groups, "remaining", len(groups)-batch.Groups)
			return batch, err
		}
		batch.Groups++

		res, err := d.dispatchBounded(ctx, g.ID, batch.Period)
		switch {
		case err != nil:
			batch.Failed++
			batch.Errors[g.ID] = err
			logger.Error("Reminder failed", "group_id", g.ID, "error", err)
		case res.Sent:
			batch.Sent++
		default:
			batch.Skipped++
		}
	}

	logger.Info("Reminder batch finished",
		"groups", batch.Groups,
		"sent", batch.Sent,
		"skipped", batch.Skipped,
		"failed", batch.Failed,
		"duration", time.Since(start),
	)
	return batch, nil
}

func (d *Dispatcher) dispatchBounded(ctx context.Context, groupID int64, periodID string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.DispatchToGroup(ctx, groupID, periodID, Scheduled)
}
