package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/workpilot/internal/calculator"
	"github.com/mmynk/workpilot/internal/export"
	"github.com/mmynk/workpilot/internal/ledger"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/reminder"
	"github.com/mmynk/workpilot/internal/roster"
)

// ReportService combines the roster, ledger, dispatcher and exporter into
// the operations shared by the chat bot and the admin API.
type ReportService struct {
	Roster     *roster.Store
	Ledger     *ledger.Ledger
	Resolver   *period.Resolver
	Dispatcher *reminder.Dispatcher
	Exporter   *export.Exporter

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewReportService creates a ReportService. m may be nil.
func NewReportService(
	rs *roster.Store,
	l *ledger.Ledger,
	resolver *period.Resolver,
	dispatcher *reminder.Dispatcher,
	exporter *export.Exporter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		Roster:     rs,
		Ledger:     l,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Exporter:   exporter,
		metrics:    m,
		logger:     logger,
	}
}

// Submission is the outcome of Submit.
type Submission struct {
	Report models.Report
	Period string
	// OnRoster is false when the author is excluded from the roster.
	OnRoster bool
}

// Submit auto-registers the author, unless excluded, and records the report
// under the period containing now.
func (s *ReportService) Submit(ctx context.Context, groupID int64, author models.Member, content string, now time.Time, source string) (Submission, error) {
	onRoster, err := s.Roster.AutoRegister(ctx, groupID, author)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to register author: %w", err)
	}

	report, err := s.Ledger.AddReport(ctx, groupID, author.ID, author.Name, content, now)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to add report: %w", err)
	}
	s.metrics.ReportSubmitted(source)

	return Submission{
		Report:   report,
		Period:   s.Resolver.Resolve(now),
		OnRoster: onRoster,
	}, nil
}

// Progress loads a registered group's roster and ledger for periodID, the
// current period when empty.
func (s *ReportService) Progress(ctx context.Context, groupID int64, periodID string) (*models.Ledger, calculator.Progress, error) {
	if _, err := s.Roster.Group(ctx, groupID); err != nil {
		return nil, calculator.Progress{}, err
	}
	members, err := s.Roster.ListMembers(ctx, groupID)
	if err != nil {
		return nil, calculator.Progress{}, err
	}
	l, err := s.Ledger.LoadPeriod(ctx, groupID, periodID)
	if err != nil {
		return nil, calculator.Progress{}, err
	}
	return l, calculator.CalculateProgress(members, l), nil
}

// Pending returns the period and the members of a group that have not
// submitted for it. A group without a roster has nobody pending.
func (s *ReportService) Pending(ctx context.Context, groupID int64, periodID string) (string, []models.PendingMember, error) {
	members, err := s.Roster.ListMembers(ctx, groupID)
	if err != nil {
		return "", nil, err
	}
	l, err := s.Ledger.LoadPeriod(ctx, groupID, periodID)
	if err != nil {
		return "", nil, err
	}
	return l.Period, calculator.Pending(members, l), nil
}

// Remind sends a manual reminder to a group. A group without a roster is
// reported as all submitted and nothing is sent.
func (s *ReportService) Remind(ctx context.Context, groupID int64, periodID string) (reminder.Result, error) {
	if periodID != "" {
		if err := s.Resolver.Validate(periodID); err != nil {
			return reminder.Result{}, err
		}
	}
	return s.Dispatcher.DispatchToGroup(ctx, groupID, periodID, reminder.Manual)
}
