package game

import (
	"time"

	"github.com/ganot/questline/internal/domain/level"
)

// Status is a game's lifecycle state.
type Status string

const (
	StatusUnderConstruction Status = "underconstruction"
	StatusReady             Status = "ready"
	StatusGettingWaivers    Status = "getting_waivers"
	StatusStarted           Status = "started"
	StatusFinished          Status = "finished"
	StatusComplete          Status = "complete"
)

// ActiveStatuses are the statuses of which at most one game may hold one at a time.
var ActiveStatuses = []Status{StatusGettingWaivers, StatusStarted}

// IsActive reports whether the status is in the active cluster.
func (s Status) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the game can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusComplete
}

// Valid reports whether the status is known.
func (s Status) Valid() bool {
	switch s {
	case StatusUnderConstruction, StatusReady, StatusGettingWaivers, StatusStarted, StatusFinished, StatusComplete:
		return true
	default:
		return false
	}
}

// Game is one scheduled competition. Levels are ordered by their number in game.
type Game struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"author_id"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	StartAt   *time.Time    `json:"start_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Levels    []level.Level `json:"levels,omitempty"`
}

// IsAuthor reports whether playerID authored the game.
func (g *Game) IsAuthor(playerID string) bool {
	return g.AuthorID == playerID
}

// LevelsCount returns the number of levels.
func (g *Game) LevelsCount() int {
	return len(g.Levels)
}

// Level returns the level with the given zero-based number.
func (g *Game) Level(number int) (level.Level, bool) {
	if number < 0 || number >= len(g.Levels) {
		return level.Level{}, false
	}
	return g.Levels[number], true
}

// Kickoff is a team placed on the first level that still waits for its
// puzzle and first hint.
type Kickoff struct {
	TeamID       string
	LevelStartAt time.Time
}

// Scenario is an authored game: a name plus ordered level scenarios.
type Scenario struct {
	Name   string           `json:"name" yaml:"name"`
	Levels []level.Scenario `json:"levels" yaml:"levels"`
}
