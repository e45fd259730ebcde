package testserver

import (
	"testing"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/mcp"
	"github.com/ganot/questline/internal/notify"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
name: Night run
levels:
  - id: bridge
    keys: [shoot, run]
    time-hints:
      - time: 0
        hint:
          - type: text
            text: Find the bridge
      - time: 10
        hint:
          - type: gps
            latitude: 55.75
            longitude: 37.62
  - id: tower
    keys: [climb]
    time-hints:
      - time: 0
        hint:
          - type: text
            text: Up you go
`

type player struct {
	*Client
	teamID string
}

func signUp(t *testing.T, ts *TestServer, gameID, teamName string) player {
	t.Helper()
	var p team.Player
	ts.Connect(t, "").Call(t, "register_player", map[string]any{"name": "captain of " + teamName}, &p)

	c := ts.Connect(t, p.ID)
	var tm team.Team
	c.Call(t, "create_team", map[string]any{"name": teamName}, &tm)
	c.Call(t, "add_waiver", map[string]any{"game_id": gameID, "team_id": tm.ID, "vote": "yes"}, nil)
	return player{Client: c, teamID: tm.ID}
}

func (p player) submit(t *testing.T, gameID, key string) mcp.SubmitKeyResponse {
	t.Helper()
	var resp mcp.SubmitKeyResponse
	p.Call(t, "submit_key", map[string]any{"game_id": gameID, "team_id": p.teamID, "key": key}, &resp)
	return resp
}

func TestFullGame(t *testing.T) {
	ts := New(t)

	var author team.Player
	ts.Connect(t, "").Call(t, "register_player", map[string]any{"name": "Author"}, &author)
	org := ts.Connect(t, author.ID)

	var g mcp.GameResponse
	org.Call(t, "upsert_game", map[string]any{"scenario": scenarioYAML}, &g)
	require.Equal(t, 2, g.LevelsCount)
	require.Equal(t, game.StatusUnderConstruction, g.Status)
	org.Call(t, "start_waivers", map[string]any{"game_id": g.ID}, nil)

	owls := signUp(t, ts, g.ID, "Owls")
	foxes := signUp(t, ts, g.ID, "Foxes")

	startAt := Epoch.Add(time.Hour)
	org.Call(t, "plan_start", map[string]any{"game_id": g.ID, "start_at": startAt.Format(time.RFC3339)}, nil)

	// Nothing may be typed before the start.
	text := owls.CallErr(t, "submit_key", map[string]any{"game_id": g.ID, "team_id": owls.teamID, "key": "shoot"})
	require.Contains(t, text, "GAME_NOT_STARTED")

	ts.Advance(t, 55*time.Minute)
	require.Len(t, ts.Bus.On("questline.games."+g.ID+".prepare", notify.TypePrepare), 1)

	ts.Advance(t, 5*time.Minute)
	var active mcp.GetActiveGameResponse
	owls.Call(t, "get_active_game", nil, &active)
	require.NotNil(t, active.Game)
	require.Equal(t, game.StatusStarted, active.Game.Status)
	for _, p := range []player{owls, foxes} {
		require.Len(t, ts.Bus.On("questline.teams."+p.teamID, notify.TypePuzzle), 1)
	}

	var hints mcp.AvailableHintsResponse
	owls.Call(t, "available_hints", map[string]any{"game_id": g.ID, "team_id": owls.teamID}, &hints)
	require.Len(t, hints.Hints, 1)

	ts.Advance(t, 10*time.Minute)
	require.Len(t, ts.Bus.On("questline.teams."+owls.teamID, notify.TypeHint), 1)
	owls.Call(t, "available_hints", map[string]any{"game_id": g.ID, "team_id": owls.teamID}, &hints)
	require.Len(t, hints.Hints, 2)
	require.Equal(t, level.HintGPS, hints.Hints[1].Hint[0].Type)

	// Owls solve both levels.
	resp := owls.submit(t, g.ID, "shoot")
	require.Equal(t, gameplay.ResultCorrect, resp.Result)
	require.False(t, resp.IsLevelUp)
	resp = owls.submit(t, g.ID, " SHOOT ")
	require.Equal(t, gameplay.ResultDuplicate, resp.Result)
	resp = owls.submit(t, g.ID, "walk")
	require.Equal(t, gameplay.ResultWrong, resp.Result)

	var progress gameplay.TeamProgress
	owls.Call(t, "team_progress", map[string]any{"game_id": g.ID, "team_id": owls.teamID}, &progress)
	require.Equal(t, 0, progress.LevelNumber)
	require.Equal(t, []string{"SHOOT"}, progress.CorrectKeys)

	resp = owls.submit(t, g.ID, "run")
	require.True(t, resp.IsLevelUp)
	require.Len(t, ts.Bus.On("questline.teams."+owls.teamID, notify.TypePuzzle), 2)

	resp = owls.submit(t, g.ID, "climb")
	require.True(t, resp.IsLevelUp)
	require.Equal(t, 1, resp.LevelNumber)
	require.Len(t, ts.Bus.On("questline.teams."+owls.teamID, notify.TypeGameFinished), 1)

	owls.Call(t, "team_progress", map[string]any{"game_id": g.ID, "team_id": owls.teamID}, &progress)
	require.True(t, progress.Finished)
	text = owls.CallErr(t, "submit_key", map[string]any{"game_id": g.ID, "team_id": owls.teamID, "key": "climb"})
	require.Contains(t, text, "TEAM_FINISHED")

	// The game goes on until the Foxes finish too.
	owls.Call(t, "get_active_game", nil, &active)
	require.Equal(t, game.StatusStarted, active.Game.Status)
	require.Empty(t, ts.Bus.On("questline.teams."+owls.teamID, notify.TypeGameFinishedByAll))

	for _, key := range []string{"run", "shoot", "climb"} {
		foxes.submit(t, g.ID, key)
	}
	for _, p := range []player{owls, foxes} {
		require.Len(t, ts.Bus.On("questline.teams."+p.teamID, notify.TypeGameFinishedByAll), 1)
	}

	active = mcp.GetActiveGameResponse{}
	owls.Call(t, "get_active_game", nil, &active)
	require.Nil(t, active.Game)

	var gameLog mcp.GameLogResponse
	org.Call(t, "game_log", map[string]any{"game_id": g.ID}, &gameLog)
	require.NotEmpty(t, gameLog.Entries)
	require.Equal(t, activity.TypeGameFinished, gameLog.Entries[0].Type)

	org.Call(t, "game_log", map[string]any{"game_id": g.ID, "type": string(activity.TypeTeamFinished)}, &gameLog)
	require.Len(t, gameLog.Entries, 2)

	org.Call(t, "complete_game", map[string]any{"game_id": g.ID}, nil)
}

func TestOnlyAuthorRunsTheGame(t *testing.T) {
	ts := New(t)

	var author, stranger team.Player
	ts.Connect(t, "").Call(t, "register_player", map[string]any{"name": "Author"}, &author)
	ts.Connect(t, "").Call(t, "register_player", map[string]any{"name": "Stranger"}, &stranger)

	var g mcp.GameResponse
	ts.Connect(t, author.ID).Call(t, "upsert_game", map[string]any{"scenario": scenarioYAML}, &g)

	other := ts.Connect(t, stranger.ID)
	text := other.CallErr(t, "start_waivers", map[string]any{"game_id": g.ID})
	require.Contains(t, text, "NOT_AUTHORIZED")
	text = other.CallErr(t, "upsert_game", map[string]any{"scenario": scenarioYAML})
	require.Contains(t, text, "NOT_AUTHORIZED")
}

func TestSecondActiveGameRejected(t *testing.T) {
	ts := New(t)

	var author team.Player
	ts.Connect(t, "").Call(t, "register_player", map[string]any{"name": "Author"}, &author)
	org := ts.Connect(t, author.ID)

	var first, second mcp.GameResponse
	org.Call(t, "upsert_game", map[string]any{"scenario": scenarioYAML}, &first)
	org.Call(t, "upsert_game", map[string]any{"scenario": "name: Day run\nlevels:\n  - id: gate\n    keys: [open]\n    time-hints:\n      - time: 0\n        hint:\n          - type: text\n            text: Gate\n"}, &second)
	require.NotEqual(t, first.ID, second.ID)

	org.Call(t, "start_waivers", map[string]any{"game_id": first.ID}, nil)
	text := org.CallErr(t, "start_waivers", map[string]any{"game_id": second.ID})
	require.Contains(t, text, "ANOTHER_GAME_ACTIVE")

	text = org.CallErr(t, "upsert_game", map[string]any{"scenario": scenarioYAML})
	require.Contains(t, text, "GAME_LOCKED")
}
