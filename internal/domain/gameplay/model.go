package gameplay

import "time"

// KeyResult classifies a submitted key.
type KeyResult string

const (
	ResultCorrect   KeyResult = "correct"
	ResultWrong     KeyResult = "wrong"
	ResultDuplicate KeyResult = "duplicate"
)

// KeyTime is an append-only record of one key submission.
type KeyTime struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"game_id"`
	TeamID      string    `json:"team_id"`
	PlayerID    string    `json:"player_id"`
	LevelNumber int       `json:"level_number"`
	Text        string    `json:"text"`
	Result      KeyResult `json:"result"`
	EnteredAt   time.Time `json:"entered_at"`
}

// IsCorrect reports whether the key is one of the level keys, duplicate or not.
func (k KeyTime) IsCorrect() bool {
	return k.Result == ResultCorrect || k.Result == ResultDuplicate
}

// InsertedKey is a saved key plus whether it completed the level.
type InsertedKey struct {
	KeyTime
	IsLevelUp bool `json:"is_level_up"`
}

// LevelTime marks when a team reached a level. A team whose latest LevelTime
// number equals the game's level count has finished.
type LevelTime struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"game_id"`
	TeamID      string    `json:"team_id"`
	LevelNumber int       `json:"level_number"`
	StartAt     time.Time `json:"start_at"`
}

// HintRef addresses one hint of one level for one team.
type HintRef struct {
	GameID      string `json:"game_id"`
	TeamID      string `json:"team_id"`
	LevelNumber int    `json:"level_number"`
	HintNumber  int    `json:"hint_number"`
}

// SubmitRequest is a key typed by a player for their team.
type SubmitRequest struct {
	GameID   string
	TeamID   string
	PlayerID string
	Key      string
}

// TeamProgress describes where a team is in a game.
type TeamProgress struct {
	GameID      string    `json:"game_id"`
	TeamID      string    `json:"team_id"`
	LevelNumber int       `json:"level_number"`
	LevelStart  time.Time `json:"level_start"`
	Finished    bool      `json:"finished"`
	CorrectKeys []string  `json:"correct_keys,omitempty"`
}
