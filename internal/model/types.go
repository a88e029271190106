package model

import "time"

// State is the derived behavioral classification of a twin.
type State string

const (
	StateHealthy   State = "Healthy"
	StateModerate  State = "Moderate"
	StateExcessive State = "Excessive"
)

// Default threshold values applied when a twin is created lazily.
const (
	DefaultDailyThreshold = 120
	DefaultNightThreshold = 60
)

// Event is one play session reported by a client. Events are immutable and
// appended to a ledger that the update engine never reads back.
type Event struct {
	EventID         string    `json:"event_id"`
	UserID          string    `json:"user_id"`
	GameName        string    `json:"game_name"`
	DurationMinutes int       `json:"duration_minutes"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// AggregateSnapshot holds the three running minute counters for a user.
// Counters are monotonically non-decreasing; no rollover is applied at
// day or week boundaries.
type AggregateSnapshot struct {
	TodayMinutes  int `json:"today_minutes"`
	WeeklyMinutes int `json:"weekly_minutes"`
	NightMinutes  int `json:"night_minutes"`
}

// Thresholds are the configurable per-user limits shown in reports.
type Thresholds struct {
	Daily int `json:"daily"`
	Night int `json:"night"`
}

// DefaultThresholds returns the thresholds assigned to a freshly created twin.
func DefaultThresholds() Thresholds {
	return Thresholds{Daily: DefaultDailyThreshold, Night: DefaultNightThreshold}
}

// DigitalTwin is the persisted per-user summary record. Version increments on
// every write and guards optimistic concurrent updates.
type DigitalTwin struct {
	UserID     string            `json:"user_id"`
	Thresholds Thresholds        `json:"thresholds"`
	Aggregates AggregateSnapshot `json:"aggregates"`
	State      State             `json:"state"`
	Version    int64             `json:"-"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Report is the flattened dashboard view of a twin.
type Report struct {
	UserID         string `json:"user_id"`
	TodayMinutes   int    `json:"today_minutes"`
	WeeklyMinutes  int    `json:"weekly_minutes"`
	NightMinutes   int    `json:"night_minutes"`
	State          State  `json:"state"`
	DailyThreshold int    `json:"daily_threshold"`
	NightThreshold int    `json:"night_threshold"`
}
