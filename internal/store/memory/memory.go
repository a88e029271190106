// Package memory provides a mutex-guarded in-process store. It backs unit
// tests and the memory DB driver; data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

// New constructs an empty in-memory store.
func New() store.Store {
	return &memStore{
		twins: make(map[string]*model.DigitalTwin),
	}
}

type memStore struct {
	mu     sync.Mutex
	twins  map[string]*model.DigitalTwin
	ledger []model.Event
}

func (s *memStore) Twins() store.Twins   { return &twins{s} }
func (s *memStore) Events() store.Events { return &events{s} }

// HealthPing implements health.HealthPinger; the in-memory store is always up.
func (s *memStore) HealthPing(ctx context.Context) error { return ctx.Err() }

type twins struct{ s *memStore }

func (t *twins) Get(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tw, ok := t.s.twins[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	out := *tw
	return &out, nil
}

func (t *twins) CreateIfAbsent(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tw, ok := t.s.twins[userID]
	if !ok {
		tw = &model.DigitalTwin{
			UserID:     userID,
			Thresholds: model.DefaultThresholds(),
			State:      model.StateHealthy,
			UpdatedAt:  time.Now().UTC(),
		}
		t.s.twins[userID] = tw
	}
	out := *tw
	return &out, nil
}

func (t *twins) UpdateAggregates(ctx context.Context, userID string, agg model.AggregateSnapshot, state model.State, version int64) (*model.DigitalTwin, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tw, ok := t.s.twins[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if tw.Version != version {
		return nil, model.ErrConflict
	}
	tw.Aggregates = agg
	tw.State = state
	tw.Version++
	tw.UpdatedAt = time.Now().UTC()
	out := *tw
	return &out, nil
}

func (t *twins) UpdateThresholds(ctx context.Context, userID string, th model.Thresholds, version int64) (*model.DigitalTwin, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tw, ok := t.s.twins[userID]
	if !ok {
		return nil, model.ErrNotFound
	}
	if tw.Version != version {
		return nil, model.ErrConflict
	}
	tw.Thresholds = th
	tw.Version++
	tw.UpdatedAt = time.Now().UTC()
	out := *tw
	return &out, nil
}

type events struct{ s *memStore }

func (e *events) Append(ctx context.Context, ev *model.Event) (*model.Event, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	e.s.ledger = append(e.s.ledger, *ev)
	out := *ev
	return &out, nil
}
