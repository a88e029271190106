package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
	"github.com/gametwin/gaming-twin/server/internal/twin"
)

// TwinService is the twin-update engine: it applies one play event to a
// user's aggregate snapshot and reclassifies the behavioral state.
//
// Same-user applications are serialized in-process through a per-user mutex;
// the store-level version guard covers races with other service instances.
// A lost version race is retried from a fresh read up to maxRetries times.
type TwinService struct {
	store      store.Store
	clock      twin.Clock
	maxRetries int
	locks      *keyedMutex
}

// ApplyEventResult echoes the event metadata plus the counters and state
// produced by applying it.
type ApplyEventResult struct {
	UserID        string
	GameName      string
	TodayMinutes  int
	WeeklyMinutes int
	State         model.State
}

func NewTwinService(s store.Store, clock twin.Clock, maxRetries int) *TwinService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &TwinService{store: s, clock: clock, maxRetries: maxRetries, locks: newKeyedMutex()}
}

// ApplyEvent records ev in the ledger, ensures the twin row exists, folds the
// event's duration into the aggregate counters and persists the new snapshot
// together with the reclassified state.
//
// Night-window attribution uses processing wall-clock time, not ev.OccurredAt.
func (s *TwinService) ApplyEvent(ctx context.Context, ev *model.Event) (*ApplyEventResult, error) {
	if ev.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", model.ErrValidation)
	}
	if ev.DurationMinutes < 0 {
		return nil, fmt.Errorf("%w: duration must not be negative", model.ErrValidation)
	}

	rec := *ev
	if rec.EventID == "" {
		rec.EventID = uuid.New().String()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = s.clock.Now()
	}

	if _, err := s.store.Events().Append(ctx, &rec); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	unlock := s.locks.Lock(rec.UserID)
	defer unlock()

	tw, err := s.store.Twins().CreateIfAbsent(ctx, rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("ensure twin for %s: %w", rec.UserID, err)
	}

	for attempt := 0; ; attempt++ {
		agg := tw.Aggregates
		agg.TodayMinutes += rec.DurationMinutes
		agg.WeeklyMinutes += rec.DurationMinutes
		if twin.IsNight(s.clock.Now()) {
			agg.NightMinutes += rec.DurationMinutes
		}
		state := twin.ClassifyState(agg.TodayMinutes)

		updated, err := s.store.Twins().UpdateAggregates(ctx, rec.UserID, agg, state, tw.Version)
		if err == nil {
			return &ApplyEventResult{
				UserID:        rec.UserID,
				GameName:      rec.GameName,
				TodayMinutes:  updated.Aggregates.TodayMinutes,
				WeeklyMinutes: updated.Aggregates.WeeklyMinutes,
				State:         updated.State,
			}, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return nil, fmt.Errorf("update aggregates for %s: %w", rec.UserID, err)
		}
		if attempt+1 >= s.maxRetries {
			return nil, fmt.Errorf("update aggregates for %s: lost %d version races: %w", rec.UserID, s.maxRetries, err)
		}
		tw, err = s.store.Twins().Get(ctx, rec.UserID)
		if err != nil {
			return nil, fmt.Errorf("reload twin for %s: %w", rec.UserID, err)
		}
	}
}
