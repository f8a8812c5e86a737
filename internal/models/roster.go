package models

// Roster is the persisted member list of one group.
type Roster struct {
	Group Group `json:"group"`

	// Members in insertion order.
	Members []Member `json:"members"`

	// Excluded holds members that must not be re-added by sync or
	// auto-registration.
	Excluded []Member `json:"excluded,omitempty"`
}

// IndexOf returns the position of memberID in Members, or -1.
func (r *Roster) IndexOf(memberID int64) int {
	return indexOf(r.Members, memberID)
}

// Upsert adds a member or refreshes its name in place.
// It reports whether the member was newly added.
func (r *Roster) Upsert(m Member) bool {
	if i := r.IndexOf(m.ID); i >= 0 {
		r.Members[i].Name = m.Name
		return false
	}
	r.Members = append(r.Members, m)
	return true
}

// Remove deletes a member, keeping the order of the rest.
// It reports whether anything was removed.
func (r *Roster) Remove(memberID int64) bool {
	var ok bool
	r.Members, ok = without(r.Members, memberID)
	return ok
}

// IsExcluded reports whether memberID is on the exclusion list.
func (r *Roster) IsExcluded(memberID int64) bool {
	return indexOf(r.Excluded, memberID) >= 0
}

// Exclude removes the member from the roster and records the exclusion.
func (r *Roster) Exclude(m Member) {
	r.Remove(m.ID)
	if i := indexOf(r.Excluded, m.ID); i >= 0 {
		r.Excluded[i].Name = m.Name
		return
	}
	r.Excluded = append(r.Excluded, m)
}

// Include lifts an exclusion. It does not add the member back.
func (r *Roster) Include(memberID int64) bool {
	var ok bool
	r.Excluded, ok = without(r.Excluded, memberID)
	return ok
}

func indexOf(members []Member, id int64) int {
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func without(members []Member, id int64) ([]Member, bool) {
	i := indexOf(members, id)
	if i < 0 {
		return members, false
	}
	out := make([]Member, 0, len(members)-1)
	out = append(out, members[:i]...)
	out = append(out, members[i+1:]...)
	return out, true
}
