package gameplay

import "errors"

var (
	// ErrInvalidKey indicates the submitted text is not a syntactically valid key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrTeamFinished indicates the team has already passed the last level.
	ErrTeamFinished = errors.New("team already finished the game")
	// ErrTeamNotPlaying indicates the team was not placed on any level of the game.
	ErrTeamNotPlaying = errors.New("team is not playing this game")
)
