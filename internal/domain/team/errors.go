package team

import "errors"

var (
	// ErrTeamNotFound indicates the team doesn't exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrPlayerNotFound indicates the player doesn't exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrPlayerNotInTeam indicates the player acts for a team they don't belong to.
	ErrPlayerNotInTeam = errors.New("player not in team")
	// ErrTeamNameTaken indicates another team already uses the name.
	ErrTeamNameTaken = errors.New("team name taken")
	// ErrInvalidInput indicates invalid team input.
	ErrInvalidInput = errors.New("invalid team input")
)
