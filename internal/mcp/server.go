package mcp

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// GameplayService defines running-game operations needed by MCP.
type GameplayService interface {
	CheckKey(ctx context.Context, req gameplay.SubmitRequest) (*gameplay.InsertedKey, error)
	AvailableHints(ctx context.Context, gameID, teamID string) ([]level.TimeHint, error)
	Progress(ctx context.Context, gameID, teamID string) (*gameplay.TeamProgress, error)
}

// GameService defines game lifecycle operations needed by MCP.
type GameService interface {
	Active(ctx context.Context) (*game.Game, error)
	Upsert(ctx context.Context, authorID string, scn game.Scenario) (*game.Game, error)
	StartWaivers(ctx context.Context, gameID, authorID string) error
	AddWaiver(ctx context.Context, w team.Waiver) error
	PlanStart(ctx context.Context, gameID, authorID string, startAt time.Time) error
	AddOrganizer(ctx context.Context, gameID, authorID, playerID string, canSpy bool) (*team.Organizer, error)
	Complete(ctx context.Context, gameID, authorID string) error
}

// TeamService defines player and team operations needed by MCP.
type TeamService interface {
	RegisterPlayer(ctx context.Context, name string) (*team.Player, error)
	CreateTeam(ctx context.Context, req team.CreateTeamRequest) (*team.Team, error)
	JoinTeam(ctx context.Context, playerID, teamID string) error
	CheckMember(ctx context.Context, playerID, teamID string) error
}

// LevelTestService defines level test operations needed by MCP.
type LevelTestService interface {
	Start(ctx context.Context, s leveltest.Suite) (*leveltest.Run, error)
	CheckKey(ctx context.Context, s leveltest.Suite, key string) (*leveltest.CheckResult, error)
	Cancel(ctx context.Context, s leveltest.Suite) error
}

// GameLogService defines game log operations needed by MCP.
type GameLogService interface {
	Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Gameplay   GameplayService
	Games      GameService
	Teams      TeamService
	LevelTests LevelTestService
	GameLog    GameLogService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        zerolog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	logger := cfg.Logger.With().Str("component", "mcp").Str("transport", cfg.TransportMode).Logger()

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "questline",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(playerMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}
