package mcp

import (
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

type PingParams struct{}

type PingResponse struct {
	Status   string `json:"status"`
	PlayerID string `json:"player_id,omitempty"`
}

type RegisterPlayerParams struct {
	Name string `json:"name" jsonschema:"Player display name"`
}

type CreateTeamParams struct {
	Name     string `json:"name" jsonschema:"Team name, unique across the server"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"Captain player ID (defaults to the calling player)"`
}

type JoinTeamParams struct {
	TeamID   string `json:"team_id" jsonschema:"Team to join"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"Player ID (defaults to the calling player)"`
}

type SubmitKeyParams struct {
	GameID   string `json:"game_id" jsonschema:"Running game ID"`
	TeamID   string `json:"team_id" jsonschema:"Team the key is typed for"`
	PlayerID string `json:"player_id,omitempty" jsonschema:"Player typing the key (defaults to the calling player)"`
	Key      string `json:"key" jsonschema:"Key text; surrounding spaces and case are ignored"`
}

type SubmitKeyResponse struct {
	Key         string             `json:"key"`
	Result      gameplay.KeyResult `json:"result"`
	LevelNumber int                `json:"level_number"`
	IsLevelUp   bool               `json:"is_level_up"`
	EnteredAt   time.Time          `json:"entered_at"`
}

type TeamParams struct {
	GameID string `json:"game_id" jsonschema:"Game ID"`
	TeamID string `json:"team_id" jsonschema:"Team ID"`
}

type AvailableHintsResponse struct {
	Hints []level.TimeHint `json:"hints"`
}

type GetActiveGameParams struct{}

// GameResponse describes a game without its level contents.
type GameResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	AuthorID    string      `json:"author_id"`
	Status      game.Status `json:"status"`
	StartAt     *time.Time  `json:"start_at,omitempty"`
	LevelsCount int         `json:"levels_count"`
}

type GetActiveGameResponse struct {
	Game *GameResponse `json:"game,omitempty"`
}

type UpsertGameParams struct {
	Scenario string `json:"scenario" jsonschema:"Game scenario as YAML text, see questline://docs/scenario"`
	AuthorID string `json:"author_id,omitempty" jsonschema:"Author player ID (defaults to the calling player)"`
}

type GameActionParams struct {
	GameID   string `json:"game_id" jsonschema:"Game ID"`
	AuthorID string `json:"author_id,omitempty" jsonschema:"Author player ID (defaults to the calling player)"`
}

type AddWaiverParams struct {
	GameID   string    `json:"game_id" jsonschema:"Game collecting waivers"`
	TeamID   string    `json:"team_id" jsonschema:"Team the player plays for"`
	PlayerID string    `json:"player_id,omitempty" jsonschema:"Voting player (defaults to the calling player)"`
	Vote     team.Vote `json:"vote" jsonschema:"One of yes, no, think"`
}

type PlanStartParams struct {
	GameID   string `json:"game_id" jsonschema:"Game ID"`
	AuthorID string `json:"author_id,omitempty" jsonschema:"Author player ID (defaults to the calling player)"`
	StartAt  string `json:"start_at" jsonschema:"Start moment, RFC 3339"`
}

type AddOrganizerParams struct {
	GameID   string `json:"game_id" jsonschema:"Game ID"`
	AuthorID string `json:"author_id,omitempty" jsonschema:"Author player ID (defaults to the calling player)"`
	PlayerID string `json:"player_id" jsonschema:"Player to add as organizer"`
	CanSpy   bool   `json:"can_spy,omitempty" jsonschema:"Whether the organizer receives level-up events"`
}

type GameLogParams struct {
	GameID string         `json:"game_id" jsonschema:"Game ID"`
	Type   *activity.Type `json:"type,omitempty" jsonschema:"Only entries of this type"`
	Limit  int            `json:"limit,omitempty" jsonschema:"Maximum entries, newest first"`
	Offset int            `json:"offset,omitempty"`
}

type GameLogResponse struct {
	Entries []activity.Entry `json:"entries"`
}

type LevelTestParams struct {
	GameID   string `json:"game_id" jsonschema:"Game ID"`
	LevelID  string `json:"level_id" jsonschema:"Level id from the scenario"`
	TesterID string `json:"tester_id,omitempty" jsonschema:"Testing author or organizer (defaults to the calling player)"`
}

type LevelTestKeyParams struct {
	GameID   string `json:"game_id" jsonschema:"Game ID"`
	LevelID  string `json:"level_id" jsonschema:"Level id from the scenario"`
	TesterID string `json:"tester_id,omitempty" jsonschema:"Testing author or organizer (defaults to the calling player)"`
	Key      string `json:"key" jsonschema:"Key text; case and surrounding spaces are ignored"`
}

type LevelTestKeyResponse struct {
	Key       string             `json:"key"`
	Result    gameplay.KeyResult `json:"result"`
	Completed bool               `json:"completed"`
	Duration  string             `json:"duration,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

func toGameResponse(g *game.Game) *GameResponse {
	if g == nil {
		return nil
	}
	return &GameResponse{
		ID:          g.ID,
		Name:        g.Name,
		AuthorID:    g.AuthorID,
		Status:      g.Status,
		StartAt:     g.StartAt,
		LevelsCount: g.LevelsCount(),
	}
}
