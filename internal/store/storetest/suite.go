package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	userID := "u-" + uuid.New().String()

	// Get before creation reports not-found.
	if _, err := s.Twins().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get absent twin: want ErrNotFound, got %v", err)
	}

	// CreateIfAbsent seeds defaults.
	tw, err := s.Twins().CreateIfAbsent(ctx, userID)
	if err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}
	if tw.Thresholds != model.DefaultThresholds() {
		t.Fatalf("CreateIfAbsent thresholds: got %+v", tw.Thresholds)
	}
	if tw.Aggregates != (model.AggregateSnapshot{}) {
		t.Fatalf("CreateIfAbsent aggregates: got %+v", tw.Aggregates)
	}
	if tw.State != model.StateHealthy {
		t.Fatalf("CreateIfAbsent state: got %v", tw.State)
	}
	if tw.Version != 0 {
		t.Fatalf("CreateIfAbsent version: got %d", tw.Version)
	}

	// CreateIfAbsent is idempotent: a second call returns the same row.
	again, err := s.Twins().CreateIfAbsent(ctx, userID)
	if err != nil {
		t.Fatalf("CreateIfAbsent repeat: %v", err)
	}
	if again.Version != tw.Version || again.Thresholds != tw.Thresholds {
		t.Fatalf("CreateIfAbsent repeat changed row: %+v vs %+v", again, tw)
	}

	// Aggregates and state are written together under a version guard.
	agg := model.AggregateSnapshot{TodayMinutes: 75, WeeklyMinutes: 75, NightMinutes: 10}
	updated, err := s.Twins().UpdateAggregates(ctx, userID, agg, model.StateModerate, tw.Version)
	if err != nil {
		t.Fatalf("UpdateAggregates: %v", err)
	}
	if updated.Aggregates != agg || updated.State != model.StateModerate {
		t.Fatalf("UpdateAggregates row: %+v", updated)
	}
	if updated.Version != tw.Version+1 {
		t.Fatalf("UpdateAggregates version: got %d want %d", updated.Version, tw.Version+1)
	}

	// A stale version loses the race.
	if _, err := s.Twins().UpdateAggregates(ctx, userID, agg, model.StateModerate, tw.Version); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("UpdateAggregates stale version: want ErrConflict, got %v", err)
	}

	// Thresholds update under the same guard.
	th := model.Thresholds{Daily: 150, Night: 40}
	updated2, err := s.Twins().UpdateThresholds(ctx, userID, th, updated.Version)
	if err != nil {
		t.Fatalf("UpdateThresholds: %v", err)
	}
	if updated2.Thresholds != th {
		t.Fatalf("UpdateThresholds row: %+v", updated2)
	}
	if updated2.Aggregates != agg {
		t.Fatalf("UpdateThresholds must not touch aggregates: %+v", updated2)
	}
	if _, err := s.Twins().UpdateThresholds(ctx, userID, th, updated.Version); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("UpdateThresholds stale version: want ErrConflict, got %v", err)
	}

	// Get reflects the final row.
	final, err := s.Twins().Get(ctx, userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if final.Thresholds != th || final.Aggregates != agg || final.State != model.StateModerate {
		t.Fatalf("Get final row: %+v", final)
	}

	// Events ledger accepts appends.
	ev := &model.Event{
		EventID:         uuid.New().String(),
		UserID:          userID,
		GameName:        "minecraft",
		DurationMinutes: 30,
		OccurredAt:      time.Now().UTC(),
	}
	if _, err := s.Events().Append(ctx, ev); err != nil {
		t.Fatalf("Append event: %v", err)
	}
}
