// Package backend selects and builds the record store implementation.
package backend

import (
	"fmt"

	"tally/internal/store"
)

// Backend is the unified record store: everything the HTTP layer and the
// services need from a storage implementation.
type Backend interface {
	store.TransactionStore
	store.BudgetStore
	store.ChangeLog
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result carries the backend instance and its optional cleanup.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Type names a record store implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

func (t Type) String() string { return string(t) }

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Validate checks the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	return nil
}
