// Package app wires the repositories, domain services, scheduler and MCP
// server into one running questline instance.
package app

import (
	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/lock"
	"github.com/ganot/questline/internal/mcp"
	"github.com/ganot/questline/internal/notify"
	"github.com/ganot/questline/internal/scheduler"
	"github.com/ganot/questline/internal/sqlite"
	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Deps are the outside resources an App runs on.
type Deps struct {
	DB            *sqlite.DB
	Jobs          scheduler.Store
	Bus           notify.Conn
	SubjectPrefix string
	Runner        scheduler.Config
	TransportMode string
	Version       string
	Clock         clockwork.Clock
	Logger        zerolog.Logger
}

// App holds the wired services.
type App struct {
	Teams      *team.Service
	Games      *game.Service
	Gameplay   *gameplay.Service
	LevelTests *leveltest.Service
	GameLog    *activity.Service
	Locks      *lock.Manager
	Publisher  *notify.Publisher
	Planner    *scheduler.Planner
	Runner     *scheduler.Runner
	MCP        *sdkmcp.Server
}

// New wires an App.
func New(d Deps) *App {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := d.Logger

	teamRepo := sqlite.NewTeamRepository(d.DB)
	gameRepo := sqlite.NewGameRepository(d.DB)
	progress := sqlite.NewProgressRepository(d.DB)

	a := &App{Locks: lock.NewManager()}
	a.Publisher = notify.NewPublisher(d.Bus, d.SubjectPrefix, clock, logger.With().Str("component", "notify").Logger())
	a.Planner = scheduler.NewPlanner(d.Jobs, logger.With().Str("component", "planner").Logger())
	a.Teams = team.NewService(teamRepo, logger.With().Str("component", "team").Logger())
	a.GameLog = activity.NewService(sqlite.NewActivityRepository(d.DB), clock, logger.With().Str("component", "game_log").Logger())
	a.Gameplay = gameplay.NewService(gameplay.Deps{
		Tx:       d.DB,
		Keys:     sqlite.NewKeyRepository(d.DB),
		Progress: progress,
		Games:    gameRepo,
		Teams:    teamRepo,
		Locks:    a.Locks,
		View:     a.Publisher,
		Hints:    a.Planner,
		Notifier: a.Publisher,
		Log:      a.GameLog,
		Clock:    clock,
		Logger:   logger.With().Str("component", "gameplay").Logger(),
	})
	a.Games = game.NewService(game.Deps{
		Tx:        d.DB,
		Games:     gameRepo,
		Levels:    sqlite.NewLevelRepository(d.DB),
		Roster:    teamRepo,
		Progress:  progress,
		Members:   a.Teams,
		View:      a.Publisher,
		Hints:     a.Gameplay,
		Scheduler: a.Planner,
		Notifier:  a.Publisher,
		Log:       a.GameLog,
		Clock:     clock,
		Logger:    logger.With().Str("component", "game").Logger(),
	})
	a.LevelTests = leveltest.NewService(leveltest.Deps{
		Tests:    sqlite.NewLevelTestRepository(d.DB),
		Games:    gameRepo,
		Roster:   teamRepo,
		Locks:    a.Locks,
		View:     a.Publisher,
		Hints:    a.Planner,
		Notifier: a.Publisher,
		Clock:    clock,
		Logger:   logger.With().Str("component", "leveltest").Logger(),
	})
	a.Runner = scheduler.NewRunner(d.Jobs, a.Gameplay, a.LevelTests, a.Games, clock, d.Runner, logger.With().Str("component", "runner").Logger())
	a.MCP = mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Gameplay:   a.Gameplay,
			Games:      a.Games,
			Teams:      a.Teams,
			LevelTests: a.LevelTests,
			GameLog:    a.GameLog,
		},
		TransportMode: d.TransportMode,
		Version:       d.Version,
		Logger:        logger,
	})
	return a
}
