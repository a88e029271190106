package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS events (
        event_id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        game_name TEXT NOT NULL,
        duration INTEGER NOT NULL,
        occurred_at TIMESTAMP NOT NULL
    );`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_occurred ON events (user_id, occurred_at);`,
	`CREATE TABLE IF NOT EXISTS digital_twins (
        user_id TEXT PRIMARY KEY,
        thresholds TEXT NOT NULL,
        aggregates TEXT NOT NULL,
        state TEXT NOT NULL,
        version INTEGER NOT NULL DEFAULT 0,
        updated_at TIMESTAMP NOT NULL
    );`,
}

// Open opens (or creates) a SQLite database at the given path, enables WAL
// journal mode and bootstraps the schema.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite bootstrap: %w", err)
		}
	}
	return db, nil
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Twins() store.Twins   { return &twins{db: s.db} }
func (s *sqliteStore) Events() store.Events { return &events{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Twins ---

type twins struct{ db *sql.DB }

func (t *twins) Get(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	row := t.db.QueryRowContext(ctx, `
        SELECT thresholds, aggregates, state, version, updated_at
        FROM digital_twins WHERE user_id=?
    `, userID)
	return scanTwin(row, userID)
}

func (t *twins) CreateIfAbsent(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	thJSON, _ := json.Marshal(model.DefaultThresholds())
	aggJSON, _ := json.Marshal(model.AggregateSnapshot{})
	if _, err := t.db.ExecContext(ctx, `
        INSERT INTO digital_twins (user_id, thresholds, aggregates, state, version, updated_at)
        VALUES (?,?,?,?,0,?)
        ON CONFLICT (user_id) DO NOTHING
    `, userID, string(thJSON), string(aggJSON), string(model.StateHealthy), time.Now().UTC()); err != nil {
		return nil, err
	}
	return t.Get(ctx, userID)
}

func (t *twins) UpdateAggregates(ctx context.Context, userID string, agg model.AggregateSnapshot, state model.State, version int64) (*model.DigitalTwin, error) {
	aggJSON, err := json.Marshal(agg)
	if err != nil {
		return nil, err
	}
	res, err := t.db.ExecContext(ctx, `
        UPDATE digital_twins
        SET aggregates=?, state=?, version=version+1, updated_at=?
        WHERE user_id=? AND version=?
    `, string(aggJSON), string(state), time.Now().UTC(), userID, version)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrConflict
	}
	return t.Get(ctx, userID)
}

func (t *twins) UpdateThresholds(ctx context.Context, userID string, th model.Thresholds, version int64) (*model.DigitalTwin, error) {
	thJSON, err := json.Marshal(th)
	if err != nil {
		return nil, err
	}
	res, err := t.db.ExecContext(ctx, `
        UPDATE digital_twins
        SET thresholds=?, version=version+1, updated_at=?
        WHERE user_id=? AND version=?
    `, string(thJSON), time.Now().UTC(), userID, version)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrConflict
	}
	return t.Get(ctx, userID)
}

func scanTwin(row *sql.Row, userID string) (*model.DigitalTwin, error) {
	var (
		thJSON, aggJSON string
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
	if err := json.Unmarshal([]byte(thJSON), &out.Thresholds); err != nil {
		return nil, fmt.Errorf("decode thresholds for %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(aggJSON), &out.Aggregates); err != nil {
		return nil, fmt.Errorf("decode aggregates for %s: %w", userID, err)
	}
	return &out, nil
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Append(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if _, err := e.db.ExecContext(ctx, `
        INSERT INTO events (event_id, user_id, game_name, duration, occurred_at)
        VALUES (?,?,?,?,?)
    `, ev.EventID, ev.UserID, ev.GameName, ev.DurationMinutes, ev.OccurredAt.UTC()); err != nil {
		return nil, err
	}
	out := *ev
	return &out, nil
}
