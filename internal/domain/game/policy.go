package game

import "time"

const (
	prepareEarly = 6 * time.Minute
	prepareLate  = 35 * time.Minute
	startEarly   = 1 * time.Minute
	startLate    = 30 * time.Minute

	// PrepareLead is how long before the start the prepare job is planned.
	PrepareLead = 5 * time.Minute
)

// ShouldPrepareNow reports whether a prepare wake-up at now belongs to a game
// starting at start.
func ShouldPrepareNow(start, now time.Time) bool {
	return inWindow(start, now, prepareEarly, prepareLate)
}

// ShouldStartNow reports whether a start wake-up at now belongs to a game
// starting at start.
func ShouldStartNow(start, now time.Time) bool {
	return inWindow(start, now, startEarly, startLate)
}

// inWindow checks now in [start-early, start+late).
func inWindow(start, now time.Time, early, late time.Duration) bool {
	return !now.Before(start.Add(-early)) && now.Before(start.Add(late))
}
