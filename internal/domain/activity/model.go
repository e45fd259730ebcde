package activity

import "time"

// Type represents the kind of game log entry
type Type string

const (
	TypeWaiversStarted Type = "waivers_started"
	TypeStartPlanned   Type = "start_planned"
	TypeGameStarted    Type = "game_started"
	TypeLevelUp        Type = "level_up"
	TypeTeamFinished   Type = "team_finished"
	TypeGameFinished   Type = "game_finished"
	TypeGameCompleted  Type = "game_completed"
)

// Entry is one line of the public game log
type Entry struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"game_id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ListOptions filters game log listing.
type ListOptions struct {
	GameID string
	Type   *Type
	Limit  int
	Offset int
}
