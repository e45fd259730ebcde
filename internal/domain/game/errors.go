package game

import "errors"

var (
	// ErrGameNotFound indicates the game doesn't exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrAnotherGameIsActive indicates a different game already holds an active status.
	ErrAnotherGameIsActive = errors.New("another game is active")
	// ErrNotAuthorizedForEdit indicates the player may not manage the game.
	ErrNotAuthorizedForEdit = errors.New("not authorized for edit")
	// ErrGameNotStarted indicates the operation needs a started game.
	ErrGameNotStarted = errors.New("game not started")
	// ErrCantEditGame indicates the game's status no longer allows changes.
	ErrCantEditGame = errors.New("game can't be edited in its current status")
	// ErrWaiversNotOpen indicates waivers are not being collected.
	ErrWaiversNotOpen = errors.New("game is not collecting waivers")
	// ErrNoLevels indicates a game without levels.
	ErrNoLevels = errors.New("game has no levels")
	// ErrInvalidInput indicates invalid game input.
	ErrInvalidInput = errors.New("invalid game input")
)
