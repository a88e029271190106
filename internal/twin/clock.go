package twin

import "time"

// Clock supplies wall-clock time to the update engine. Injecting it keeps
// night-window attribution deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// nightStartHour / nightEndHour bound the late-night window [22:00, 06:00].
const (
	nightStartHour = 22
	nightEndHour   = 6
)

// IsNight reports whether the time of day of t falls in the night window.
// Both endpoints are closed: 22:00:00 and exactly 06:00:00 count as night.
func IsNight(t time.Time) bool {
	h, m, s := t.Clock()
	if h >= nightStartHour || h < nightEndHour {
		return true
	}
	return h == nightEndHour && m == 0 && s == 0
}
