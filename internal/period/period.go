// Package period maps points in time to weekly period identifiers.
//
// Identifiers have the form "YYYY-Www" built from the ISO 8601 week-year and
// week number in the resolver's time zone, e.g. "2024-W10". Because both parts
// are zero padded and ISO weeks never go backwards, lexicographic order of
// identifiers matches chronological order.
package period

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mmynk/workpilot/internal/models"
)

// Resolver derives period identifiers in a fixed time zone.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a Resolver for loc. A nil loc means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Location returns the resolver's time zone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Resolve returns the period identifier containing t.
func (r *Resolver) Resolve(t time.Time) string {
	year, week := t.In(r.loc).ISOWeek()
	return Format(year, week)
}

// Current is Resolve under the name used by callers holding "now".
func (r *Resolver) Current(now time.Time) string {
	return r.Resolve(now)
}

// Start returns Monday 00:00 of the period in the resolver's zone.
func (r *Resolver) Start(id string) (time.Time, error) {
	year, week, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	start := weekStart(year, week, r.loc)
	if r.Resolve(start) != id {
		return time.Time{}, fmt.Errorf("%w: %q has no week %d", models.ErrInvalidPeriod, id, week)
	}
	return start, nil
}

// Validate checks that id names an existing ISO week.
func (r *Resolver) Validate(id string) error {
	_, err := r.Start(id)
	return err
}

// Format builds an identifier from an ISO week-year and week.
func Format(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Parse splits an identifier into ISO week-year and week.
func Parse(id string) (year, week int, err error) {
	if len(id) != 8 || id[4] != '-' || id[5] != 'W' || !digits(id[:4]) || !digits(id[6:]) {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidPeriod, id)
	}
	year, _ = strconv.Atoi(id[:4])
	week, _ = strconv.Atoi(id[6:])
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidPeriod, id)
	}
	return year, week, nil
}

func digits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// weekStart returns Monday of ISO week 1 shifted by week-1 weeks.
// January 4th always falls in ISO week 1.
func weekStart(year, week int, loc *time.Location) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset)
	return monday.AddDate(0, 0, (week-1)*7)
}
