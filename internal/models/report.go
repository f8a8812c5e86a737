package models

import "time"

// Report is one member's submission for one group and period.
type Report struct {
	// MemberID is the submitter's user id.
	MemberID int64 `json:"member_id"`

	// Name is the submitter's display name at submission time.
	Name string `json:"name"`

	// Content is the free-form report text. It is stored as received.
	Content string `json:"content"`

	// SubmittedAt is when the latest submission was accepted.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Ledger holds the reports of one group for one period.
type Ledger struct {
	GroupID int64  `json:"group_id"`
	Period  string `json:"period"`

	// Reports in first-submission order, at most one per member.
	Reports []Report `json:"reports"`
}

// NewLedger returns an empty ledger.
func NewLedger(groupID int64, period string) *Ledger {
	return &Ledger{GroupID: groupID, Period: period, Reports: []Report{}}
}

// Find returns the report submitted by memberID, if any.
func (l *Ledger) Find(memberID int64) (Report, bool) {
	for _, r := range l.Reports {
		if r.MemberID == memberID {
			return r, true
		}
	}
	return Report{}, false
}

// Upsert stores r, replacing an earlier report of the same member in place
// so that first-submission order is kept.
func (l *Ledger) Upsert(r Report) {
	for i := range l.Reports {
		if l.Reports[i].MemberID == r.MemberID {
			l.Reports[i] = r
			return
		}
	}
	l.Reports = append(l.Reports, r)
}

// Submitted returns the set of member ids with a report.
func (l *Ledger) Submitted() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(l.Reports))
	for _, r := range l.Reports {
		ids[r.MemberID] = struct{}{}
	}
	return ids
}
