// Package ledger records weekly report submissions per group and period.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/workpilot/internal/keylock"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/period"
	"github.com/mmynk/workpilot/internal/storage"
)

// Ledger stores reports keyed by (group, period, member).
type Ledger struct {
	store    storage.Store
	resolver *period.Resolver
	locks    *keylock.Locker
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Ledger.
func New(store storage.Store, resolver *period.Resolver, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:    store,
		resolver: resolver,
		locks:    keylock.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// AddReport files a report under the period containing now, replacing any
// earlier report of the same member in that period.
func (l *Ledger) AddReport(ctx context.Context, groupID, memberID int64, name, content string, now time.Time) (models.Report, error) {
	periodID := l.resolver.Resolve(now)
	key := storage.LedgerKey(groupID, periodID)

	unlock := l.locks.Lock(key)
	defer unlock()

	ledger, err := l.load(ctx, groupID, periodID)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		MemberID:    memberID,
		Name:        name,
		Content:     content,
		SubmittedAt: now.In(l.resolver.Location()),
	}
	_, resubmitted := ledger.Find(memberID)
	ledger.Upsert(report)

	if err := l.save(ctx, ledger); err != nil {
		return models.Report{}, err
	}

	l.logger.Info("Report submitted",
		"group_id", groupID,
		"member_id", memberID,
		"name", name,
		"period", periodID,
		"resubmitted", resubmitted,
	)
	return report, nil
}

// LoadPeriod returns the ledger of a group for periodID. An empty periodID
// selects the current period. Missing data yields an empty ledger.
// Malformed identifiers fail with models.ErrInvalidPeriod.
func (l *Ledger) LoadPeriod(ctx context.Context, groupID int64, periodID string) (*models.Ledger, error) {
	if periodID == "" {
		periodID = l.resolver.Resolve(l.now())
	} else if err := l.resolver.Validate(periodID); err != nil {
		return nil, err
	}
	return l.load(ctx, groupID, periodID)
}

// ListSubmitted returns the reports of a period in first-submission order.
func (l *Ledger) ListSubmitted(ctx context.Context, groupID int64, periodID string) ([]models.Report, error) {
	ledger, err := l.LoadPeriod(ctx, groupID, periodID)
	if err != nil {
		return nil, err
	}
	return ledger.Reports, nil
}

// Save persists a whole ledger, replacing what is stored for its group and period.
func (l *Ledger) Save(ctx context.Context, ledger *models.Ledger) error {
	if err := l.resolver.Validate(ledger.Period); err != nil {
		return err
	}
	unlock := l.locks.Lock(storage.LedgerKey(ledger.GroupID, ledger.Period))
	defer unlock()
	return l.save(ctx, ledger)
}

func (l *Ledger) load(ctx context.Context, groupID int64, periodID string) (*models.Ledger, error) {
	key := storage.LedgerKey(groupID, periodID)
	data, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load ledger %s: %w", models.ErrStorage, key, err)
	}
	if !ok {
		return models.NewLedger(groupID, periodID), nil
	}

	ledger := &models.Ledger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, fmt.Errorf("%w: failed to decode ledger %s: %w", models.ErrStorage, key, err)
	}
	if ledger.Reports == nil {
		ledger.Reports = []models.Report{}
	}
	return ledger, nil
}

func (l *Ledger) save(ctx context.Context, ledger *models.Ledger) error {
	key := storage.LedgerKey(ledger.GroupID, ledger.Period)
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("%w: failed to encode ledger %s: %w", models.ErrStorage, key, err)
	}
	if err := l.store.Put(ctx, key, data); err != nil {
		l.logger.Error("Failed to save ledger", "key", key, "error", err)
		return fmt.Errorf("%w: failed to save ledger %s: %w", models.ErrStorage, key, err)
	}
	return nil
}
