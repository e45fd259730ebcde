package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type gameplayStub struct {
	checkKeyFn func(context.Context, gameplay.SubmitRequest) (*gameplay.InsertedKey, error)
	hintsFn    func(context.Context, string, string) ([]level.TimeHint, error)
	progressFn func(context.Context, string, string) (*gameplay.TeamProgress, error)
}

func (g gameplayStub) CheckKey(ctx context.Context, req gameplay.SubmitRequest) (*gameplay.InsertedKey, error) {
	return g.checkKeyFn(ctx, req)
}
func (g gameplayStub) AvailableHints(ctx context.Context, gameID, teamID string) ([]level.TimeHint, error) {
	return g.hintsFn(ctx, gameID, teamID)
}
func (g gameplayStub) Progress(ctx context.Context, gameID, teamID string) (*gameplay.TeamProgress, error) {
	return g.progressFn(ctx, gameID, teamID)
}

type gameStub struct {
	activeFn       func(context.Context) (*game.Game, error)
	upsertFn       func(context.Context, string, game.Scenario) (*game.Game, error)
	startWaiversFn func(context.Context, string, string) error
	addWaiverFn    func(context.Context, team.Waiver) error
	planStartFn    func(context.Context, string, string, time.Time) error
	addOrgFn       func(context.Context, string, string, string, bool) (*team.Organizer, error)
	completeFn     func(context.Context, string, string) error
}

func (g gameStub) Active(ctx context.Context) (*game.Game, error) { return g.activeFn(ctx) }
func (g gameStub) Upsert(ctx context.Context, authorID string, scn game.Scenario) (*game.Game, error) {
	return g.upsertFn(ctx, authorID, scn)
}
func (g gameStub) StartWaivers(ctx context.Context, gameID, authorID string) error {
	return g.startWaiversFn(ctx, gameID, authorID)
}
func (g gameStub) AddWaiver(ctx context.Context, w team.Waiver) error { return g.addWaiverFn(ctx, w) }
func (g gameStub) PlanStart(ctx context.Context, gameID, authorID string, startAt time.Time) error {
	return g.planStartFn(ctx, gameID, authorID, startAt)
}
func (g gameStub) AddOrganizer(ctx context.Context, gameID, authorID, playerID string, canSpy bool) (*team.Organizer, error) {
	return g.addOrgFn(ctx, gameID, authorID, playerID, canSpy)
}
func (g gameStub) Complete(ctx context.Context, gameID, authorID string) error {
	return g.completeFn(ctx, gameID, authorID)
}

type teamStub struct {
	registerFn    func(context.Context, string) (*team.Player, error)
	createFn      func(context.Context, team.CreateTeamRequest) (*team.Team, error)
	joinFn        func(context.Context, string, string) error
	checkMemberFn func(context.Context, string, string) error
}

func (t teamStub) RegisterPlayer(ctx context.Context, name string) (*team.Player, error) {
	return t.registerFn(ctx, name)
}
func (t teamStub) CreateTeam(ctx context.Context, req team.CreateTeamRequest) (*team.Team, error) {
	return t.createFn(ctx, req)
}
func (t teamStub) JoinTeam(ctx context.Context, playerID, teamID string) error {
	return t.joinFn(ctx, playerID, teamID)
}
func (t teamStub) CheckMember(ctx context.Context, playerID, teamID string) error {
	return t.checkMemberFn(ctx, playerID, teamID)
}

type levelTestStub struct {
	startFn    func(context.Context, leveltest.Suite) (*leveltest.Run, error)
	checkKeyFn func(context.Context, leveltest.Suite, string) (*leveltest.CheckResult, error)
	cancelFn   func(context.Context, leveltest.Suite) error
}

func (l levelTestStub) Start(ctx context.Context, s leveltest.Suite) (*leveltest.Run, error) {
	return l.startFn(ctx, s)
}
func (l levelTestStub) CheckKey(ctx context.Context, s leveltest.Suite, key string) (*leveltest.CheckResult, error) {
	return l.checkKeyFn(ctx, s, key)
}
func (l levelTestStub) Cancel(ctx context.Context, s leveltest.Suite) error { return l.cancelFn(ctx, s) }

type gameLogStub struct {
	recentFn func(context.Context, activity.ListOptions) ([]activity.Entry, error)
}

func (g gameLogStub) Recent(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	return g.recentFn(ctx, opts)
}

func connect(t *testing.T, svc Services) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := NewServer(Config{Services: svc, TransportMode: "stdio", Logger: zerolog.Nop()})

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "questline-test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, playerID, name string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	params := &sdkmcp.CallToolParams{Name: name, Arguments: args}
	if playerID != "" {
		params.Meta = sdkmcp.Meta{"player_id": playerID}
	}
	res, err := cs.CallTool(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestListTools(t *testing.T) {
	cs := connect(t, Services{})

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"ping", "register_player", "create_team", "join_team",
		"submit_key", "available_hints", "team_progress",
		"get_active_game", "upsert_game", "start_waivers", "add_waiver",
		"plan_start", "add_organizer", "complete_game", "game_log",
		"start_level_test", "submit_test_key", "cancel_level_test",
	}, names)
}

func TestPing_ReportsCallingPlayer(t *testing.T) {
	cs := connect(t, Services{})

	text, isErr := callTool(t, cs, "p-1", "ping", nil)
	require.False(t, isErr)

	var resp PingResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, "p-1", resp.PlayerID)
}

func TestSubmitKey_UsesCallingPlayer(t *testing.T) {
	at := time.Date(2026, 5, 1, 18, 5, 0, 0, time.UTC)
	var got gameplay.SubmitRequest
	cs := connect(t, Services{
		Teams: teamStub{checkMemberFn: func(_ context.Context, playerID, teamID string) error {
			require.Equal(t, "p-1", playerID)
			require.Equal(t, "t-1", teamID)
			return nil
		}},
		Gameplay: gameplayStub{checkKeyFn: func(_ context.Context, req gameplay.SubmitRequest) (*gameplay.InsertedKey, error) {
			got = req
			return &gameplay.InsertedKey{
				KeyTime: gameplay.KeyTime{
					GameID: req.GameID, TeamID: req.TeamID, PlayerID: req.PlayerID,
					LevelNumber: 2, Text: "SHOOT", Result: gameplay.ResultCorrect, EnteredAt: at,
				},
				IsLevelUp: true,
			}, nil
		}},
	})

	text, isErr := callTool(t, cs, "p-1", "submit_key", map[string]any{
		"game_id": "g-1", "team_id": "t-1", "key": " shoot ",
	})
	require.False(t, isErr, text)
	require.Equal(t, gameplay.SubmitRequest{GameID: "g-1", TeamID: "t-1", PlayerID: "p-1", Key: " shoot "}, got)

	var resp SubmitKeyResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Equal(t, "SHOOT", resp.Key)
	require.Equal(t, gameplay.ResultCorrect, resp.Result)
	require.Equal(t, 2, resp.LevelNumber)
	require.True(t, resp.IsLevelUp)
	require.True(t, at.Equal(resp.EnteredAt))
}

func TestSubmitKey_Errors(t *testing.T) {
	tests := []struct {
		name      string
		playerID  string
		memberErr error
		keyErr    error
		wantCode  string
	}{
		{name: "no player", wantCode: "INVALID_INPUT"},
		{name: "not a member", playerID: "p-1", memberErr: team.ErrPlayerNotInTeam, wantCode: "NOT_A_MEMBER"},
		{name: "invalid key", playerID: "p-1", keyErr: fmt.Errorf("%w: %q", gameplay.ErrInvalidKey, "a b"), wantCode: "INVALID_KEY"},
		{name: "game not running", playerID: "p-1", keyErr: game.ErrGameNotStarted, wantCode: "GAME_NOT_STARTED"},
		{name: "team finished", playerID: "p-1", keyErr: gameplay.ErrTeamFinished, wantCode: "TEAM_FINISHED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := connect(t, Services{
				Teams: teamStub{checkMemberFn: func(context.Context, string, string) error { return tt.memberErr }},
				Gameplay: gameplayStub{checkKeyFn: func(context.Context, gameplay.SubmitRequest) (*gameplay.InsertedKey, error) {
					return nil, tt.keyErr
				}},
			})
			text, isErr := callTool(t, cs, tt.playerID, "submit_key", map[string]any{
				"game_id": "g-1", "team_id": "t-1", "key": "a b",
			})
			require.True(t, isErr)
			require.Contains(t, text, tt.wantCode)
		})
	}
}

func TestGetActiveGame(t *testing.T) {
	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	t.Run("none", func(t *testing.T) {
		cs := connect(t, Services{Games: gameStub{activeFn: func(context.Context) (*game.Game, error) {
			return nil, game.ErrGameNotFound
		}}})
		text, isErr := callTool(t, cs, "", "get_active_game", nil)
		require.False(t, isErr)
		require.JSONEq(t, `{}`, text)
	})

	t.Run("running", func(t *testing.T) {
		cs := connect(t, Services{Games: gameStub{activeFn: func(context.Context) (*game.Game, error) {
			return &game.Game{
				ID: "g-1", Name: "Night run", AuthorID: "p-1", Status: game.StatusStarted, StartAt: &start,
				Levels: []level.Level{{ID: "l-1", Scenario: level.Scenario{ID: "bridge", Keys: []string{"SHOOT"}}}},
			}, nil
		}}})
		text, isErr := callTool(t, cs, "", "get_active_game", nil)
		require.False(t, isErr)
		require.NotContains(t, text, "SHOOT")

		var resp GetActiveGameResponse
		require.NoError(t, json.Unmarshal([]byte(text), &resp))
		require.NotNil(t, resp.Game)
		require.Equal(t, "g-1", resp.Game.ID)
		require.Equal(t, game.StatusStarted, resp.Game.Status)
		require.Equal(t, 1, resp.Game.LevelsCount)
	})
}

func TestUpsertGame_ParsesScenario(t *testing.T) {
	const yml = `
name: Night run
levels:
  - id: bridge
    keys: [shoot]
    time-hints:
      - time: 0
        hint:
          - type: text
            text: Find the bridge
`
	var gotScenario game.Scenario
	cs := connect(t, Services{Games: gameStub{upsertFn: func(_ context.Context, authorID string, scn game.Scenario) (*game.Game, error) {
		require.Equal(t, "author", authorID)
		gotScenario = scn
		return &game.Game{ID: "g-1", Name: scn.Name, AuthorID: authorID, Status: game.StatusUnderConstruction}, nil
	}}})

	text, isErr := callTool(t, cs, "author", "upsert_game", map[string]any{"scenario": yml})
	require.False(t, isErr, text)
	require.Equal(t, "Night run", gotScenario.Name)
	require.Len(t, gotScenario.Levels, 1)
	require.Equal(t, []string{"SHOOT"}, gotScenario.Levels[0].Keys)

	text, isErr = callTool(t, cs, "author", "upsert_game", map[string]any{"scenario": "name: x\nlevels: [{id: 'bad id'}]\n"})
	require.True(t, isErr)
	require.Contains(t, text, "INVALID_SCENARIO")
}

func TestPlanStart(t *testing.T) {
	var gotAt time.Time
	cs := connect(t, Services{Games: gameStub{planStartFn: func(_ context.Context, gameID, authorID string, at time.Time) error {
		require.Equal(t, "g-1", gameID)
		require.Equal(t, "author", authorID)
		gotAt = at
		return nil
	}}})

	text, isErr := callTool(t, cs, "author", "plan_start", map[string]any{"game_id": "g-1", "start_at": "2026-05-01T18:00:00Z"})
	require.False(t, isErr, text)
	require.True(t, gotAt.Equal(time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)))

	text, isErr = callTool(t, cs, "author", "plan_start", map[string]any{"game_id": "g-1", "start_at": "tomorrow"})
	require.True(t, isErr)
	require.Contains(t, text, "INVALID_INPUT")
}

func TestAddWaiver_DefaultsToCallingPlayer(t *testing.T) {
	var got team.Waiver
	cs := connect(t, Services{Games: gameStub{addWaiverFn: func(_ context.Context, w team.Waiver) error {
		got = w
		return nil
	}}})

	text, isErr := callTool(t, cs, "p-7", "add_waiver", map[string]any{"game_id": "g-1", "team_id": "t-1", "vote": "yes"})
	require.False(t, isErr, text)
	require.Equal(t, team.Waiver{GameID: "g-1", TeamID: "t-1", PlayerID: "p-7", Vote: team.VoteYes}, got)
}

func TestGameLog(t *testing.T) {
	finished := activity.TypeTeamFinished
	cs := connect(t, Services{GameLog: gameLogStub{recentFn: func(_ context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
		require.Equal(t, "g-1", opts.GameID)
		require.NotNil(t, opts.Type)
		require.Equal(t, finished, *opts.Type)
		require.Equal(t, 5, opts.Limit)
		return []activity.Entry{{ID: 3, GameID: "g-1", Type: finished, Message: "Team Owls finished"}}, nil
	}}})

	text, isErr := callTool(t, cs, "", "game_log", map[string]any{"game_id": "g-1", "type": "team_finished", "limit": 5})
	require.False(t, isErr, text)

	var resp GameLogResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.Len(t, resp.Entries, 1)
	require.Equal(t, "Team Owls finished", resp.Entries[0].Message)
}

func TestSubmitTestKey_ReportsDuration(t *testing.T) {
	var got leveltest.Suite
	cs := connect(t, Services{LevelTests: levelTestStub{
		checkKeyFn: func(_ context.Context, s leveltest.Suite, key string) (*leveltest.CheckResult, error) {
			got = s
			require.Equal(t, "run", key)
			return &leveltest.CheckResult{
				Key:       leveltest.KeyTime{Suite: s, Text: "RUN", Result: gameplay.ResultCorrect},
				Completed: true,
				Duration:  42 * time.Minute,
			}, nil
		},
	}})

	text, isErr := callTool(t, cs, "o-1", "submit_test_key", map[string]any{
		"game_id": "g-1", "level_id": "bridge", "key": "run",
	})
	require.False(t, isErr, text)
	require.Equal(t, leveltest.Suite{GameID: "g-1", LevelID: "bridge", TesterID: "o-1"}, got)

	var resp LevelTestKeyResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	require.True(t, resp.Completed)
	require.Equal(t, "42m0s", resp.Duration)
}

func TestLevelTestTools_Errors(t *testing.T) {
	cs := connect(t, Services{LevelTests: levelTestStub{
		cancelFn: func(context.Context, leveltest.Suite) error { return leveltest.ErrNoTest },
	}})

	text, isErr := callTool(t, cs, "o-1", "cancel_level_test", map[string]any{"game_id": "g-1", "level_id": "bridge"})
	require.True(t, isErr)
	require.Contains(t, text, "NO_LEVEL_TEST")

	text, isErr = callTool(t, cs, "o-1", "start_level_test", map[string]any{"game_id": "g-1"})
	require.True(t, isErr)
	require.Contains(t, text, "level_id is required")
}

func TestDocResources(t *testing.T) {
	cs := connect(t, Services{})

	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "questline://docs/scenario"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "time-hints")
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("wrapped: %w", game.ErrAnotherGameIsActive), "ANOTHER_GAME_ACTIVE"},
		{game.ErrNotAuthorizedForEdit, "NOT_AUTHORIZED"},
		{game.ErrNoLevels, "NO_LEVELS"},
		{gameplay.ErrTeamNotPlaying, "TEAM_NOT_PLAYING"},
		{team.ErrTeamNameTaken, "TEAM_NAME_TAKEN"},
		{fmt.Errorf("%w: level x", level.ErrInvalidScenario), "INVALID_SCENARIO"},
		{fmt.Errorf("insert key: %w", repository.ErrForeignKeyViolation), "NOT_FOUND"},
		{leveltest.ErrNoTest, "NO_LEVEL_TEST"},
		{fmt.Errorf("%w: %q", leveltest.ErrLevelNotFound, "tower"), "LEVEL_NOT_FOUND"},
	}
	for _, tt := range tests {
		apiErr := MapError(tt.err)
		require.NotNil(t, apiErr, tt.err)
		require.Equal(t, tt.code, apiErr.Code)
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(fmt.Errorf("disk full")))
}
