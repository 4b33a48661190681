// Package backend selects and opens the storage behind a fintrack process:
// the transaction ledger, the key-value store holding goals and insight
// snapshots, and (for SQLite only) the recurring rule store.
package backend

import (
	"context"

	"fintrack/internal/goals"
	"fintrack/internal/ledger"
	"fintrack/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Backend bundles everything a process needs from its storage choice.
type Backend struct {
	Type   Type
	Ledger ledger.Ledger
	// KV persists goals and insight snapshots. Backends without durable
	// key-value storage get an in-process store.
	KV goals.Store
	// Recurring is nil when the backend has no recurring rules.
	Recurring services.RecurringStore
	// Ping reports readiness; nil means always ready.
	Ping    func(context.Context) error
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (b *Backend) Close() error {
	if b == nil || b.Cleanup == nil {
		return nil
	}
	return b.Cleanup()
}

// Ready is Ping with a nil check.
func (b *Backend) Ready(ctx context.Context) error {
	if b == nil || b.Ping == nil {
		return nil
	}
	return b.Ping(ctx)
}

// Type names a storage backend.
type Type string

const (
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
	Memory Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Sheets, Memory:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Sheets}
}
