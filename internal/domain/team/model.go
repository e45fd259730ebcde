package team

import "time"

// Team is a group of players progressing through a game together.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ChatID    *string   `json:"chat_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Player is a participant. TeamID is nil until the player joins a team.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeamID    *string   `json:"team_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Organizer is a player helping to run a game.
type Organizer struct {
	ID       string `json:"id"`
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	CanSpy   bool   `json:"can_spy"`
}

// Vote is a player's answer to a game waiver.
type Vote string

const (
	VoteYes   Vote = "yes"
	VoteNo    Vote = "no"
	VoteThink Vote = "think"
)

// Valid reports whether the vote is known.
func (v Vote) Valid() bool {
	return v == VoteYes || v == VoteNo || v == VoteThink
}

// Waiver records whether a player agrees to play a game with a team.
type Waiver struct {
	GameID   string `json:"game_id"`
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Vote     Vote   `json:"vote"`
}
