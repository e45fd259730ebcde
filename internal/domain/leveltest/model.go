// Package leveltest lets the author or an organizer play a single level of a
// game before teams do, timing how long the level takes to solve.
package leveltest

import (
	"time"

	"github.com/ganot/questline/internal/domain/gameplay"
)

// Suite identifies a level test: one tester on one level of one game.
// LevelID is the level's scenario id.
type Suite struct {
	GameID   string `json:"game_id"`
	LevelID  string `json:"level_id"`
	TesterID string `json:"tester_id"`
}

func (s Suite) lockKey() string {
	return "leveltest:" + s.GameID + ":" + s.LevelID + ":" + s.TesterID
}

// Run is a level test in progress.
type Run struct {
	Suite
	StartedAt time.Time `json:"started_at"`
}

// KeyTime is one key typed during a test.
type KeyTime struct {
	Suite
	Text      string             `json:"text"`
	Result    gameplay.KeyResult `json:"result"`
	EnteredAt time.Time          `json:"entered_at"`
}

// CheckResult is a checked key plus, once the level is solved, how long the
// test took.
type CheckResult struct {
	Key       KeyTime       `json:"key"`
	Completed bool          `json:"completed"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// HintRef addresses one hint of a test run. A restarted test gets a new
// StartedAt, which makes hints planned for the old run stale.
type HintRef struct {
	Suite
	StartedAt  time.Time `json:"started_at"`
	HintNumber int       `json:"hint_number"`
}
