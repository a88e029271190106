package twin

import "github.com/gametwin/gaming-twin/server/internal/model"

// Classification cutoffs in minutes of play for the current day. These are
// fixed; the per-user configured thresholds are informational and do not
// feed classification.
const (
	excessiveCutoffMinutes = 120
	moderateCutoffMinutes  = 60
)

// ClassifyState derives the behavioral state from today's play minutes.
func ClassifyState(todayMinutes int) model.State {
	switch {
	case todayMinutes > excessiveCutoffMinutes:
		return model.StateExcessive
	case todayMinutes > moderateCutoffMinutes:
		return model.StateModerate
	default:
		return model.StateHealthy
	}
}
