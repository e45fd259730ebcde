package level

import "time"

// NextHintTime returns when the hint at nextOffset minutes is due, given that the
// hint at currentOffset minutes is being delivered now.
func NextHintTime(currentOffset, nextOffset int, now time.Time) time.Time {
	return now.Add(time.Duration(nextOffset-currentOffset) * time.Minute)
}

// FirstHintTime returns when the first hint after the puzzle is due for a team
// that starts lvl at now. ok is false when the level has nothing to schedule.
func FirstHintTime(lvl Level, now time.Time) (at time.Time, ok bool) {
	if lvl.HintsCount() < 2 {
		return time.Time{}, false
	}
	hints := lvl.Scenario.TimeHints
	return NextHintTime(hints[0].Time, hints[1].Time, now), true
}
