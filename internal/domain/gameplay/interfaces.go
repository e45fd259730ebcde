package gameplay

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

// Transactor runs fn in one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// KeyRepository stores the key log.
type KeyRepository interface {
	SaveKey(ctx context.Context, key *KeyTime) error
	IsKeyDuplicate(ctx context.Context, gameID, teamID string, levelNumber int, text string) (bool, error)
	CorrectTypedKeys(ctx context.Context, gameID, teamID string, levelNumber int) ([]string, error)
	ListKeys(ctx context.Context, gameID, teamID string) ([]KeyTime, error)
}

// ProgressRepository stores level times.
type ProgressRepository interface {
	CurrentLevel(ctx context.Context, gameID, teamID string) (*LevelTime, error)
	LevelUp(ctx context.Context, lt *LevelTime) error
	IsAllTeamsFinished(ctx context.Context, gameID string, levelsCount int) (bool, error)
}

// GameRepository loads games and records their completion.
type GameRepository interface {
	Get(ctx context.Context, id string) (*game.Game, error)
	SetStatus(ctx context.Context, id string, status game.Status) error
}

// TeamRepository loads teams.
type TeamRepository interface {
	GetTeam(ctx context.Context, id string) (*team.Team, error)
	PlayedTeams(ctx context.Context, gameID string) ([]team.Team, error)
	ListOrganizers(ctx context.Context, gameID string) ([]team.Organizer, error)
}

// Locker serializes work per team and around finish detection.
type Locker interface {
	WithTeamLock(ctx context.Context, teamID string, fn func(ctx context.Context) error) error
	WithGlobalLock(ctx context.Context, fn func(ctx context.Context) error) error
	ClearAll()
}

// View delivers gameplay messages to teams.
type View interface {
	SendPuzzle(ctx context.Context, gameID string, t team.Team, lvl level.Level) error
	SendHint(ctx context.Context, gameID string, t team.Team, hintNumber int, lvl level.Level) error
	DuplicateKey(ctx context.Context, key KeyTime) error
	CorrectKey(ctx context.Context, key KeyTime) error
	WrongKey(ctx context.Context, key KeyTime) error
	GameFinished(ctx context.Context, gameID string, t team.Team) error
	GameFinishedByAll(ctx context.Context, gameID string, t team.Team) error
}

// HintScheduler plans a hint delivery.
type HintScheduler interface {
	PlanHint(ctx context.Context, at time.Time, ref HintRef) error
}

// Notifier delivers organizer events.
type Notifier interface {
	Notify(ctx context.Context, e event.Event) error
}

// GameLog appends to the public game log.
type GameLog interface {
	Log(ctx context.Context, gameID string, typ activity.Type, message string) error
}
