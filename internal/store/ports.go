// Package store defines the ports the billing engine persists through.
// Backends (memory, sqlite, sheets) live in subpackages; the engine
// only ever sees these interfaces.
package store

import (
	"context"
	"errors"

	"flux/internal/core"
)

// ErrNotFound distinguishes "no row for this account" from a failed
// load. A missing settings row means a new account, not an error.
var ErrNotFound = errors.New("not found")

type (
	// SettingsStore persists the one-per-account settings row.
	SettingsStore interface {
		// LoadSettings returns ErrNotFound when the account has no row.
		// Implementations run the legacy-quota upgrade so callers always
		// see the modern shape.
		LoadSettings(ctx context.Context, account string) (core.Settings, error)
		UpsertSettings(ctx context.Context, account string, s core.Settings) error
	}

	// MonthStore persists month records keyed by (account, month).
	MonthStore interface {
		// LoadMonths returns every month row for the account; an empty
		// map (not an error) when none exist.
		LoadMonths(ctx context.Context, account string) (map[string]core.MonthData, error)
		UpsertMonth(ctx context.Context, account, month string, m core.MonthData) error
		DeleteMonth(ctx context.Context, account, month string) error
	}

	// Backend is the full remote-store surface the engine consumes.
	Backend interface {
		SettingsStore
		MonthStore
	}

	// EventPublisher pushes a change notification to other clients.
	EventPublisher interface {
		PublishChange(ctx context.Context, ev ChangeEvent) error
	}
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error
