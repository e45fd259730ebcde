package leveltest

import "errors"

var (
	// ErrNoTest indicates the tester has no test of the level in progress.
	ErrNoTest = errors.New("no level test in progress")
	// ErrLevelNotFound indicates the game has no level with the given id.
	ErrLevelNotFound = errors.New("level not found in game")
)
