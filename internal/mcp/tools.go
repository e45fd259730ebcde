package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/scenario"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// toolFunc handles one tool call and returns a JSON-serializable response.
type toolFunc[In any] func(ctx context.Context, in In) (any, error)

func addTool[In any](server *sdkmcp.Server, logger zerolog.Logger, name, description string, fn toolFunc[In]) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			resp, err := fn(ctx, in)
			if err != nil {
				if MapError(err) == nil {
					logger.Error().Err(err).Str("tool", name).Msg("tool failed")
				}
				return nil, nil, mapError(err)
			}
			res, err := jsonResult(resp)
			if err != nil {
				return nil, nil, err
			}
			return res, nil, nil
		})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func requireField(name, value string) error {
	if value == "" {
		return &APIError{Code: "INVALID_INPUT", Message: name + " is required"}
	}
	return nil
}

func registerTools(server *sdkmcp.Server, svc Services, logger zerolog.Logger) {
	addTool(server, logger, "ping", "Check the server is alive and see which player the calls are made for",
		func(ctx context.Context, _ PingParams) (any, error) {
			return PingResponse{Status: "ok", PlayerID: getPlayerID(ctx)}, nil
		})

	// Players and teams
	addTool(server, logger, "register_player", "Register a new player and get its ID",
		func(ctx context.Context, in RegisterPlayerParams) (any, error) {
			return svc.Teams.RegisterPlayer(ctx, in.Name)
		})
	addTool(server, logger, "create_team", "Create a team with the player as captain",
		func(ctx context.Context, in CreateTeamParams) (any, error) {
			captain := callerOr(ctx, in.PlayerID)
			if err := requireField("player_id", captain); err != nil {
				return nil, err
			}
			return svc.Teams.CreateTeam(ctx, team.CreateTeamRequest{Name: in.Name, CaptainID: captain})
		})
	addTool(server, logger, "join_team", "Join an existing team",
		func(ctx context.Context, in JoinTeamParams) (any, error) {
			playerID := callerOr(ctx, in.PlayerID)
			if err := requireField("player_id", playerID); err != nil {
				return nil, err
			}
			if err := svc.Teams.JoinTeam(ctx, playerID, in.TeamID); err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})

	// Playing
	addTool(server, logger, "submit_key", "Submit a key for the team's current level",
		func(ctx context.Context, in SubmitKeyParams) (any, error) {
			playerID := callerOr(ctx, in.PlayerID)
			if err := requireField("player_id", playerID); err != nil {
				return nil, err
			}
			if err := svc.Teams.CheckMember(ctx, playerID, in.TeamID); err != nil {
				return nil, err
			}
			key, err := svc.Gameplay.CheckKey(ctx, gameplay.SubmitRequest{
				GameID:   in.GameID,
				TeamID:   in.TeamID,
				PlayerID: playerID,
				Key:      in.Key,
			})
			if err != nil {
				return nil, err
			}
			return SubmitKeyResponse{
				Key:         key.Text,
				Result:      key.Result,
				LevelNumber: key.LevelNumber,
				IsLevelUp:   key.IsLevelUp,
				EnteredAt:   key.EnteredAt,
			}, nil
		})
	addTool(server, logger, "available_hints", "List the hints of the team's current level revealed so far, puzzle first",
		func(ctx context.Context, in TeamParams) (any, error) {
			hints, err := svc.Gameplay.AvailableHints(ctx, in.GameID, in.TeamID)
			if err != nil {
				return nil, err
			}
			return AvailableHintsResponse{Hints: hints}, nil
		})
	addTool(server, logger, "team_progress", "Show the team's current level and the keys already found on it",
		func(ctx context.Context, in TeamParams) (any, error) {
			return svc.Gameplay.Progress(ctx, in.GameID, in.TeamID)
		})

	// Games
	addTool(server, logger, "get_active_game", "Get the game currently collecting waivers or running, if any",
		func(ctx context.Context, _ GetActiveGameParams) (any, error) {
			g, err := svc.Games.Active(ctx)
			if errors.Is(err, game.ErrGameNotFound) {
				return GetActiveGameResponse{}, nil
			}
			if err != nil {
				return nil, err
			}
			return GetActiveGameResponse{Game: toGameResponse(g)}, nil
		})
	addTool(server, logger, "upsert_game", "Create a game from a YAML scenario, or replace the levels of the author's game with the same name",
		func(ctx context.Context, in UpsertGameParams) (any, error) {
			authorID := callerOr(ctx, in.AuthorID)
			if err := requireField("author_id", authorID); err != nil {
				return nil, err
			}
			scn, err := scenario.ParseGame([]byte(in.Scenario))
			if err != nil {
				return nil, err
			}
			g, err := svc.Games.Upsert(ctx, authorID, scn)
			if err != nil {
				return nil, err
			}
			return toGameResponse(g), nil
		})
	addTool(server, logger, "start_waivers", "Open the game for waivers; only one game may be active",
		func(ctx context.Context, in GameActionParams) (any, error) {
			authorID := callerOr(ctx, in.AuthorID)
			if err := svc.Games.StartWaivers(ctx, in.GameID, authorID); err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})
	addTool(server, logger, "add_waiver", "Vote yes, no or think on playing the game with a team",
		func(ctx context.Context, in AddWaiverParams) (any, error) {
			playerID := callerOr(ctx, in.PlayerID)
			if err := requireField("player_id", playerID); err != nil {
				return nil, err
			}
			err := svc.Games.AddWaiver(ctx, team.Waiver{
				GameID:   in.GameID,
				TeamID:   in.TeamID,
				PlayerID: playerID,
				Vote:     in.Vote,
			})
			if err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})
	addTool(server, logger, "plan_start", "Schedule the game start; teams get the prepare notice earlier",
		func(ctx context.Context, in PlanStartParams) (any, error) {
			startAt, err := time.Parse(time.RFC3339, in.StartAt)
			if err != nil {
				return nil, &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("start_at: %v", err), RecoveryHint: "Use RFC 3339, e.g. 2026-05-01T18:00:00Z"}
			}
			if err := svc.Games.PlanStart(ctx, in.GameID, callerOr(ctx, in.AuthorID), startAt); err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})
	addTool(server, logger, "add_organizer", "Add a player as organizer of the game",
		func(ctx context.Context, in AddOrganizerParams) (any, error) {
			return svc.Games.AddOrganizer(ctx, in.GameID, callerOr(ctx, in.AuthorID), in.PlayerID, in.CanSpy)
		})
	addTool(server, logger, "complete_game", "Close a finished game for good",
		func(ctx context.Context, in GameActionParams) (any, error) {
			if err := svc.Games.Complete(ctx, in.GameID, callerOr(ctx, in.AuthorID)); err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})

	// Level tests
	addTool(server, logger, "start_level_test", "Play one level of the game as a tester; the puzzle and hints go to the tester",
		func(ctx context.Context, in LevelTestParams) (any, error) {
			s, err := testSuite(ctx, in.GameID, in.LevelID, in.TesterID)
			if err != nil {
				return nil, err
			}
			return svc.LevelTests.Start(ctx, s)
		})
	addTool(server, logger, "submit_test_key", "Submit a key for the level under test; the last key ends the test",
		func(ctx context.Context, in LevelTestKeyParams) (any, error) {
			s, err := testSuite(ctx, in.GameID, in.LevelID, in.TesterID)
			if err != nil {
				return nil, err
			}
			res, err := svc.LevelTests.CheckKey(ctx, s, in.Key)
			if err != nil {
				return nil, err
			}
			resp := LevelTestKeyResponse{Key: res.Key.Text, Result: res.Key.Result, Completed: res.Completed}
			if res.Completed {
				resp.Duration = res.Duration.String()
			}
			return resp, nil
		})
	addTool(server, logger, "cancel_level_test", "Stop testing the level",
		func(ctx context.Context, in LevelTestParams) (any, error) {
			s, err := testSuite(ctx, in.GameID, in.LevelID, in.TesterID)
			if err != nil {
				return nil, err
			}
			if err := svc.LevelTests.Cancel(ctx, s); err != nil {
				return nil, err
			}
			return OKResponse{OK: true}, nil
		})

	addTool(server, logger, "game_log", "Read the public game log, newest first",
		func(ctx context.Context, in GameLogParams) (any, error) {
			if err := requireField("game_id", in.GameID); err != nil {
				return nil, err
			}
			entries, err := svc.GameLog.Recent(ctx, activity.ListOptions{
				GameID: in.GameID,
				Type:   in.Type,
				Limit:  in.Limit,
				Offset: in.Offset,
			})
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []activity.Entry{}
			}
			return GameLogResponse{Entries: entries}, nil
		})
}

func testSuite(ctx context.Context, gameID, levelID, testerID string) (leveltest.Suite, error) {
	s := leveltest.Suite{GameID: gameID, LevelID: levelID, TesterID: callerOr(ctx, testerID)}
	for _, f := range []struct{ name, value string }{
		{"game_id", s.GameID},
		{"level_id", s.LevelID},
		{"tester_id", s.TesterID},
	} {
		if err := requireField(f.name, f.value); err != nil {
			return s, err
		}
	}
	return s, nil
}
