// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Store defines the key-value persistence used by the roster and ledger.
// Values are opaque documents; Put replaces a value atomically so readers
// see either the old or the new document, never a partial write.
// This abstraction allows swapping storage backends (SQLite, in-memory, ...)
// without changing the services built on top.
type Store interface {
	// Get returns the value stored at key. A missing key is reported with
	// ok == false and a nil error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put creates or replaces the value at key.
	Put(ctx context.Context, key string, value []byte) error

	// Keys lists the keys starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

const (
	// RosterPrefix namespaces per-group member lists.
	RosterPrefix = "roster:"

	// LedgerPrefix namespaces per-group, per-period report maps.
	LedgerPrefix = "ledger:"
)

// RosterKey returns the key of a group's roster.
func RosterKey(groupID int64) string {
	return RosterPrefix + strconv.FormatInt(groupID, 10)
}

// LedgerKey returns the key of a group's ledger for one period.
func LedgerKey(groupID int64, period string) string {
	return fmt.Sprintf("%s%d:%s", LedgerPrefix, groupID, period)
}

// ParseRosterKey extracts the group id from a roster key.
func ParseRosterKey(key string) (int64, error) {
	if !strings.HasPrefix(key, RosterPrefix) {
		return 0, fmt.Errorf("not a roster key: %q", key)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(key, RosterPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid roster key %q: %w", key, err)
	}
	return id, nil
}
