package game

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

// Repository provides persistence for games. Get returns the game with its levels.
type Repository interface {
	Create(ctx context.Context, g *Game) error
	Get(ctx context.Context, id string) (*Game, error)
	GetByName(ctx context.Context, name string) (*Game, error)
	GetActive(ctx context.Context) (*Game, error)
	SetStatus(ctx context.Context, id string, status Status) error
	SetStartAt(ctx context.Context, id string, at time.Time) error
}

// LevelRepository provides persistence for level scenarios.
type LevelRepository interface {
	Upsert(ctx context.Context, lvl *level.Level) error
	AttachToGame(ctx context.Context, gameID string, levelIDs []string) error
}

// RosterRepository provides the teams taking part in a game.
type RosterRepository interface {
	PlayedTeams(ctx context.Context, gameID string) ([]team.Team, error)
	UpsertWaiver(ctx context.Context, w team.Waiver) error
	AddOrganizer(ctx context.Context, org *team.Organizer) error
	ListOrganizers(ctx context.Context, gameID string) ([]team.Organizer, error)
}

// ProgressRepository places teams on levels. SetTeamsToFirstLevel also
// records a pending Kickoff per team; PendingKickoffs leaves out teams that
// already moved past the first level.
type ProgressRepository interface {
	SetTeamsToFirstLevel(ctx context.Context, gameID string, teamIDs []string, at time.Time) error
	PendingKickoffs(ctx context.Context, gameID string) ([]Kickoff, error)
	ClearKickoff(ctx context.Context, gameID, teamID string) error
}

// MemberChecker verifies team membership.
type MemberChecker interface {
	CheckMember(ctx context.Context, playerID, teamID string) error
}

// Transactor runs fn in one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// View delivers lifecycle messages to teams.
type View interface {
	PrepareGame(ctx context.Context, g *Game, teams []team.Team, orgs []team.Organizer) error
	SendPuzzle(ctx context.Context, gameID string, t team.Team, lvl level.Level) error
}

// HintPlanner schedules the first hint of a level for a team.
type HintPlanner interface {
	ScheduleFirstHint(ctx context.Context, gameID string, t team.Team, levelNumber int, lvl level.Level, now time.Time) error
}

// Scheduler plans lifecycle wake-ups.
type Scheduler interface {
	PlanPrepare(ctx context.Context, gameID string, at time.Time) error
	PlanStart(ctx context.Context, gameID string, at time.Time) error
}

// Notifier delivers organizer events.
type Notifier interface {
	Notify(ctx context.Context, e event.Event) error
}

// GameLog appends to the public game log.
type GameLog interface {
	Log(ctx context.Context, gameID string, typ activity.Type, message string) error
}
