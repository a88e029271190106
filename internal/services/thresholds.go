package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

// ThresholdService reads and merges the per-user daily/night limits. It
// shares the twin row with TwinService but touches only the thresholds
// field; cross-field races are caught by the store's version guard.
type ThresholdService struct {
	store      store.Store
	maxRetries int
	locks      *keyedMutex
}

func NewThresholdService(s store.Store, maxRetries int) *ThresholdService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ThresholdService{store: s, maxRetries: maxRetries, locks: newKeyedMutex()}
}

// Get returns the user's thresholds, creating the twin with defaults when absent.
func (s *ThresholdService) Get(ctx context.Context, userID string) (model.Thresholds, error) {
	if userID == "" {
		return model.Thresholds{}, fmt.Errorf("%w: user_id is required", model.ErrValidation)
	}
	tw, err := s.store.Twins().CreateIfAbsent(ctx, userID)
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("ensure twin for %s: %w", userID, err)
	}
	return withDefaults(tw.Thresholds), nil
}

// Update merges the supplied fields into the user's thresholds. A nil field
// keeps its prior value. The twin is created with defaults when absent, and
// the resulting full thresholds value is returned.
func (s *ThresholdService) Update(ctx context.Context, userID string, daily, night *int) (model.Thresholds, error) {
	if userID == "" {
		return model.Thresholds{}, fmt.Errorf("%w: user_id is required", model.ErrValidation)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	tw, err := s.store.Twins().CreateIfAbsent(ctx, userID)
	if err != nil {
		return model.Thresholds{}, fmt.Errorf("ensure twin for %s: %w", userID, err)
	}

	for attempt := 0; ; attempt++ {
		th := withDefaults(tw.Thresholds)
		if daily != nil {
			th.Daily = *daily
		}
		if night != nil {
			th.Night = *night
		}

		updated, err := s.store.Twins().UpdateThresholds(ctx, userID, th, tw.Version)
		if err == nil {
			return updated.Thresholds, nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return model.Thresholds{}, fmt.Errorf("update thresholds for %s: %w", userID, err)
		}
		if attempt+1 >= s.maxRetries {
			return model.Thresholds{}, fmt.Errorf("update thresholds for %s: lost %d version races: %w", userID, s.maxRetries, err)
		}
		tw, err = s.store.Twins().Get(ctx, userID)
		if err != nil {
			return model.Thresholds{}, fmt.Errorf("reload twin for %s: %w", userID, err)
		}
	}
}

// withDefaults substitutes the stock limits for unset fields so rows written
// before a threshold existed still report sensible values.
func withDefaults(th model.Thresholds) model.Thresholds {
	if th.Daily == 0 {
		th.Daily = model.DefaultDailyThreshold
	}
	if th.Night == 0 {
		th.Night = model.DefaultNightThreshold
	}
	return th
}
