// Package export renders a period's reports as a Markdown document and
// stores it in a Sink.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/render"
)

// Roster resolves group names.
type Roster interface {
	Group(ctx context.Context, groupID int64) (models.Group, error)
}

// Ledger loads a period's reports.
type Ledger interface {
	LoadPeriod(ctx context.Context, groupID int64, periodID string) (*models.Ledger, error)
}

// Document is a rendered export.
type Document struct {
	ID       string
	GroupID  int64
	Period   string
	Name     string
	Body     []byte
	Location string // Empty when no sink is configured
}

// Exporter renders and stores export documents.
type Exporter struct {
	roster   Roster
	ledger   Ledger
	renderer *render.Renderer
	sink     Sink
	logger   *slog.Logger
	now      func() time.Time
}

// NewExporter creates an Exporter. sink may be nil, in which case documents
// are rendered but not stored.
func NewExporter(roster Roster, ledger Ledger, renderer *render.Renderer, sink Sink, logger *slog.Logger) *Exporter {
	return &Exporter{
		roster:   roster,
		ledger:   ledger,
		renderer: renderer,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}
}

// Export renders the reports of a group for periodID, the current period
// when empty, and stores the document.
func (e *Exporter) Export(ctx context.Context, groupID int64, periodID string) (Document, error) {
	group, err := e.roster.Group(ctx, groupID)
	if err != nil {
		return Document{}, err
	}
	ledger, err := e.ledger.LoadPeriod(ctx, groupID, periodID)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:      uuid.NewString(),
		GroupID: groupID,
		Period:  ledger.Period,
		Name:    FileName(ledger.Period),
		Body:    []byte(e.renderer.Markdown(group.Name, ledger.Period, ledger.Reports, e.now())),
	}

	if e.sink != nil {
		doc.Location, err = e.sink.Put(ctx, Key(groupID, ledger.Period), doc.Body)
		if err != nil {
			e.logger.Error("Export failed", "group_id", groupID, "period", doc.Period, "error", err)
			return Document{}, fmt.Errorf("%w: %w", models.ErrStorage, err)
		}
	}

	e.logger.Info("Export created",
		"export_id", doc.ID,
		"group_id", groupID,
		"period", doc.Period,
		"reports", len(ledger.Reports),
		"location", doc.Location,
	)
	return doc, nil
}
