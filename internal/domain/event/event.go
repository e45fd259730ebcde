// Package event defines the notifications sent to game organizers.
package event

import (
	"time"

	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

// Kind discriminates organizer events.
type Kind string

const (
	KindLevelUp            Kind = "level_up"
	KindNewOrg             Kind = "new_org"
	KindLevelTestCompleted Kind = "level_test_completed"
)

// Event is an organizer notification. The set of implementations is closed:
// LevelUp, NewOrg and LevelTestCompleted.
type Event interface {
	Kind() Kind
	Recipients() []team.Organizer
	event()
}

// LevelUp is emitted when a team advances to the next level.
type LevelUp struct {
	GameID      string           `json:"game_id"`
	Team        team.Team        `json:"team"`
	LevelNumber int              `json:"level_number"`
	NewLevel    level.Level      `json:"new_level"`
	At          time.Time        `json:"at"`
	Orgs        []team.Organizer `json:"-"`
}

// NewOrg is emitted when an organizer joins a game.
type NewOrg struct {
	GameID string           `json:"game_id"`
	Org    team.Organizer   `json:"org"`
	Orgs   []team.Organizer `json:"-"`
}

// LevelTestCompleted is emitted when an organizer finishes a test run of a level.
type LevelTestCompleted struct {
	GameID   string           `json:"game_id"`
	LevelID  string           `json:"level_id"`
	TesterID string           `json:"tester_id"`
	Duration time.Duration    `json:"duration"`
	Orgs     []team.Organizer `json:"-"`
}

func (LevelUp) Kind() Kind            { return KindLevelUp }
func (NewOrg) Kind() Kind             { return KindNewOrg }
func (LevelTestCompleted) Kind() Kind { return KindLevelTestCompleted }

func (e LevelUp) Recipients() []team.Organizer            { return e.Orgs }
func (e NewOrg) Recipients() []team.Organizer             { return e.Orgs }
func (e LevelTestCompleted) Recipients() []team.Organizer { return e.Orgs }

func (LevelUp) event()            {}
func (NewOrg) event()             {}
func (LevelTestCompleted) event() {}
