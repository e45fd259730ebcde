package leveltest

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

// Repository stores test runs and their keys. Get returns
// repository.ErrNotFound when there is no run. Start replaces any earlier run
// of the suite together with its keys.
type Repository interface {
	Start(ctx context.Context, run *Run) error
	Get(ctx context.Context, s Suite) (*Run, error)
	SaveKey(ctx context.Context, key *KeyTime) error
	CorrectKeys(ctx context.Context, s Suite) ([]string, error)
	Delete(ctx context.Context, s Suite) error
}

// GameRepository loads games.
type GameRepository interface {
	Get(ctx context.Context, id string) (*game.Game, error)
}

// Roster lists the organizers of a game.
type Roster interface {
	ListOrganizers(ctx context.Context, gameID string) ([]team.Organizer, error)
}

// Locker serializes key checks of one test.
type Locker interface {
	WithTeamLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// View delivers test messages to the tester.
type View interface {
	SendTestPuzzle(ctx context.Context, s Suite, lvl level.Level) error
	SendTestHint(ctx context.Context, s Suite, hintNumber int, lvl level.Level) error
	TestKey(ctx context.Context, key KeyTime) error
}

// HintScheduler plans a test hint delivery.
type HintScheduler interface {
	PlanTestHint(ctx context.Context, at time.Time, ref HintRef) error
}

// Notifier delivers organizer events.
type Notifier interface {
	Notify(ctx context.Context, e event.Event) error
}
