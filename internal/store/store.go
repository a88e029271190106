package store

import (
	"context"

	"github.com/gametwin/gaming-twin/server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite, memory).
type Store interface {
	Twins() Twins
	Events() Events
}

// Twins persists the per-user digital twin record.
//
// UpdateAggregates and UpdateThresholds are conditional writes: they succeed
// only when the stored row still carries the version observed at read time,
// and return model.ErrConflict otherwise. Callers reload and retry.
type Twins interface {
	// Get returns the twin for userID, or model.ErrNotFound.
	Get(ctx context.Context, userID string) (*model.DigitalTwin, error)
	// CreateIfAbsent inserts a twin with default thresholds, zeroed aggregates
	// and Healthy state unless one already exists, then returns the current row.
	CreateIfAbsent(ctx context.Context, userID string) (*model.DigitalTwin, error)
	// UpdateAggregates writes aggregates and state together, bumping version.
	UpdateAggregates(ctx context.Context, userID string, agg model.AggregateSnapshot, state model.State, version int64) (*model.DigitalTwin, error)
	// UpdateThresholds writes the full thresholds value, bumping version.
	UpdateThresholds(ctx context.Context, userID string, th model.Thresholds, version int64) (*model.DigitalTwin, error)
}

// Events is the append-only play event ledger. The update engine never reads
// it back.
type Events interface {
	Append(ctx context.Context, e *model.Event) (*model.Event, error)
}
