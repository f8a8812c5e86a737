// Package roster keeps the per-group lists of members who owe a report.
//
// Every mutation runs as load, modify, save under a per-group lock, and the
// document is re-read from storage on each call. A failed save therefore
// leaves both storage and every later reader on the previous state.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmynk/workpilot/internal/keylock"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/storage"
)

// Store manages group rosters on top of a storage.Store.
type Store struct {
	store   storage.Store
	locks   *keylock.Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a roster Store. m may be nil.
func New(store storage.Store, logger *slog.Logger, m *metrics.Metrics) *Store {
	return &Store{
		store:   store,
		locks:   keylock.New(),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// RegisterGroup creates the group's roster if it does not exist yet.
// Registering an existing group is a no-op. It reports whether the group
// was created.
func (s *Store) RegisterGroup(ctx context.Context, groupID int64, name string) (bool, error) {
	unlock := s.locks.Lock(storage.RosterKey(groupID))
	defer unlock()

	_, ok, err := s.load(ctx, groupID)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}

	r := &models.Roster{
		Group:   models.Group{ID: groupID, Name: name, CreatedAt: s.now().Unix()},
		Members: []models.Member{},
	}
	if err := s.save(ctx, r); err != nil {
		return false, err
	}
	s.logger.Info("Group registered", "group_id", groupID, "name", name)
	return true, nil
}

// AddMember upserts a member. An explicit add also lifts an exclusion.
func (s *Store) AddMember(ctx context.Context, groupID int64, m models.Member) error {
	return s.update(ctx, groupID, func(r *models.Roster) bool {
		r.Include(m.ID)
		if r.Upsert(m) {
			s.logger.Info("Member added", "group_id", groupID, "member_id", m.ID, "name", m.Name)
		}
		return true
	})
}

// AutoRegister adds a member unless it is excluded. It reports whether the
// member is on the roster afterwards.
func (s *Store) AutoRegister(ctx context.Context, groupID int64, m models.Member) (bool, error) {
	var onRoster bool
	err := s.update(ctx, groupID, func(r *models.Roster) bool {
		if r.IsExcluded(m.ID) {
			return false
		}
		onRoster = true
		if i := r.IndexOf(m.ID); i >= 0 && r.Members[i].Name == m.Name {
			return false
		}
		if r.Upsert(m) {
			s.logger.Info("Member auto-registered", "group_id", groupID, "member_id", m.ID, "name", m.Name)
		}
		return true
	})
	return onRoster, err
}

// RemoveMember deletes a member. Removing an absent member is a no-op.
func (s *Store) RemoveMember(ctx context.Context, groupID int64, memberID int64) error {
	return s.update(ctx, groupID, func(r *models.Roster) bool {
		if !r.Remove(memberID) {
			return false
		}
		s.logger.Info("Member removed", "group_id", groupID, "member_id", memberID)
		return true
	})
}

// SyncMembers merges an authoritative member list into the roster in the
// given order. Members missing from the list are kept and excluded members
// are skipped. It returns the number of members upserted.
func (s *Store) SyncMembers(ctx context.Context, groupID int64, members []models.Member) (int, error) {
	synced := 0
	err := s.update(ctx, groupID, func(r *models.Roster) bool {
		for _, m := range members {
			if r.IsExcluded(m.ID) {
				continue
			}
			r.Upsert(m)
			synced++
		}
		return synced > 0
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Members synced", "group_id", groupID, "supplied", len(members), "synced", synced)
	return synced, nil
}

// Exclude removes a member from the roster and keeps it from being re-added
// by sync or auto-registration.
func (s *Store) Exclude(ctx context.Context, groupID int64, m models.Member) error {
	return s.update(ctx, groupID, func(r *models.Roster) bool {
		r.Exclude(m)
		s.logger.Info("Member excluded", "group_id", groupID, "member_id", m.ID)
		return true
	})
}

// Include lifts an exclusion without re-adding the member. It reports
// whether the member was excluded.
func (s *Store) Include(ctx context.Context, groupID int64, memberID int64) (bool, error) {
	var lifted bool
	err := s.update(ctx, groupID, func(r *models.Roster) bool {
		lifted = r.Include(memberID)
		return lifted
	})
	return lifted, err
}

// ListMembers returns the roster in insertion order. A group without a
// roster has no members.
func (s *Store) ListMembers(ctx context.Context, groupID int64) ([]models.Member, error) {
	r, ok, err := s.load(ctx, groupID)
	if err != nil || !ok {
		return []models.Member{}, err
	}
	return r.Members, nil
}

// ListExcluded returns the exclusion list in insertion order.
func (s *Store) ListExcluded(ctx context.Context, groupID int64) ([]models.Member, error) {
	r, ok, err := s.load(ctx, groupID)
	if err != nil || !ok {
		return []models.Member{}, err
	}
	return r.Excluded, nil
}

// Group returns a registered group.
func (s *Store) Group(ctx context.Context, groupID int64) (models.Group, error) {
	r, ok, err := s.load(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if !ok {
		return models.Group{}, fmt.Errorf("%w: %d", models.ErrUnknownGroup, groupID)
	}
	return r.Group, nil
}

// ListGroups returns every registered group ordered by registration time.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	keys, err := s.store.Keys(ctx, storage.RosterPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list rosters: %w", models.ErrStorage, err)
	}

	groups := make([]models.Group, 0, len(keys))
	for _, key := range keys {
		id, err := storage.ParseRosterKey(key)
		if err != nil {
			s.logger.Warn("Skipping malformed roster key", "key", key, "error", err)
			continue
		}
		r, ok, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			groups = append(groups, r.Group)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt < groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

// update applies fn to the group's roster under the group lock and saves it
// when fn reports a change.
func (s *Store) update(ctx context.Context, groupID int64, fn func(r *models.Roster) bool) error {
	unlock := s.locks.Lock(storage.RosterKey(groupID))
	defer unlock()

	r, ok, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", models.ErrUnknownGroup, groupID)
	}
	if !fn(r) {
		return nil
	}
	return s.save(ctx, r)
}

func (s *Store) load(ctx context.Context, groupID int64) (*models.Roster, bool, error) {
	data, ok, err := s.store.Get(ctx, storage.RosterKey(groupID))
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to load roster %d: %w", models.ErrStorage, groupID, err)
	}
	if !ok {
		return nil, false, nil
	}
	r := &models.Roster{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, false, fmt.Errorf("%w: failed to decode roster %d: %w", models.ErrStorage, groupID, err)
	}
	if r.Members == nil {
		r.Members = []models.Member{}
	}
	return r, true, nil
}

func (s *Store) save(ctx context.Context, r *models.Roster) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: failed to encode roster %d: %w", models.ErrStorage, r.Group.ID, err)
	}
	if err := s.store.Put(ctx, storage.RosterKey(r.Group.ID), data); err != nil {
		s.logger.Error("Failed to save roster", "group_id", r.Group.ID, "error", err)
		return fmt.Errorf("%w: failed to save roster %d: %w", models.ErrStorage, r.Group.ID, err)
	}
	s.metrics.SetRosterSize(r.Group.ID, len(r.Members))
	return nil
}
