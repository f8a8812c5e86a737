package calculator

import "github.com/mmynk/workpilot/internal/models"

// Progress summarises how much of a roster has reported for one period.
type Progress struct {
	Submitted []models.Member // Roster members with a report, in roster order
	Pending   []models.PendingMember
	Total     int // Roster size
}

// Pending returns the roster members without a report in the ledger.
// Roster order is preserved. Reports from members no longer on the roster
// are ignored.
func Pending(members []models.Member, ledger *models.Ledger) []models.PendingMember {
	pending := make([]models.PendingMember, 0, len(members))
	var submitted map[int64]struct{}
	if ledger != nil {
		submitted = ledger.Submitted()
	}
	for _, m := range members {
		if _, ok := submitted[m.ID]; ok {
			continue
		}
		pending = append(pending, models.PendingMember{ID: m.ID, Name: m.Name})
	}
	return pending
}

// CalculateProgress splits the roster into submitted and pending members.
//
// Submitted holds roster members only, so a departed member's report never
// counts towards the total.
func CalculateProgress(members []models.Member, ledger *models.Ledger) Progress {
	p := Progress{
		Submitted: []models.Member{},
		Pending:   Pending(members, ledger),
		Total:     len(members),
	}
	var submitted map[int64]struct{}
	if ledger != nil {
		submitted = ledger.Submitted()
	}
	for _, m := range members {
		if _, ok := submitted[m.ID]; ok {
			p.Submitted = append(p.Submitted, m)
		}
	}
	return p
}
