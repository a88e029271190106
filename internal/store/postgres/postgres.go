package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Twins() store.Twins   { return &twins{db: s.db} }
func (s *pgStore) Events() store.Events { return &events{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Twins ---

type twins struct{ db *sql.DB }

func (t *twins) Get(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT thresholds, aggregates, state, version, updated_at
        FROM digital_twins WHERE user_id=$1
    `, userID)
	return scanTwin(row, userID)
}

func (t *twins) CreateIfAbsent(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	if _, err := t.db.ExecContext(ctx, `
        INSERT INTO digital_twins (user_id)
        VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING
    `, userID); err != nil {
		return nil, err
	}
	return t.Get(ctx, userID)
}

func (t *twins) UpdateAggregates(ctx context.Context, userID string, agg model.AggregateSnapshot, state model.State, version int64) (*model.DigitalTwin, error) {
	aggJSON, err := json.Marshal(agg)
	if err != nil {
		return nil, err
	}
	row := t.db.QueryRowContext(ctx, `
        UPDATE digital_twins
        SET aggregates=$1, state=$2, version=version+1, updated_at=now()
        WHERE user_id=$3 AND version=$4
        RETURNING thresholds, aggregates, state, version, updated_at
    `, aggJSON, string(state), userID, version)
	out, err := scanTwin(row, userID)
	if errors.Is(err, model.ErrNotFound) {
		// Row exists (twins are never deleted); the version moved under us.
		return nil, model.ErrConflict
	}
	return out, err
}

func (t *twins) UpdateThresholds(ctx context.Context, userID string, th model.Thresholds, version int64) (*model.DigitalTwin, error) {
	thJSON, err := json.Marshal(th)
	if err != nil {
		return nil, err
	}
	row := t.db.QueryRowContext(ctx, `
        UPDATE digital_twins
        SET thresholds=$1, version=version+1, updated_at=now()
        WHERE user_id=$2 AND version=$3
        RETURNING thresholds, aggregates, state, version, updated_at
    `, thJSON, userID, version)
	out, err := scanTwin(row, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, model.ErrConflict
	}
	return out, err
}

func scanTwin(row *sql.Row, userID string) (*model.DigitalTwin, error) {
	var (
		thJSON, aggJSON []byte
		state           string
		out             model.DigitalTwin
	)
	if err := row.Scan(&thJSON, &aggJSON, &state, &out.Version, &out.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	out.UserID = userID
	out.State = model.State(state)
	if err := json.Unmarshal(thJSON, &out.Thresholds); err != nil {
		return nil, fmt.Errorf("decode thresholds for %s: %w", userID, err)
	}
	if err := json.Unmarshal(aggJSON, &out.Aggregates); err != nil {
		return nil, fmt.Errorf("decode aggregates for %s: %w", userID, err)
	}
	return &out, nil
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Append(ctx context.Context, ev *model.Event) (*model.Event, error) {
	var occurred time.Time
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO events (event_id, user_id, game_name, duration, occurred_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING occurred_at
    `, ev.EventID, ev.UserID, ev.GameName, ev.DurationMinutes, ev.OccurredAt)
	if err := row.Scan(&occurred); err != nil {
		return nil, err
	}
	out := *ev
	out.OccurredAt = occurred
	return &out, nil
}
