package level

import "errors"

var (
	// ErrInvalidScenario indicates a level scenario failed validation.
	ErrInvalidScenario = errors.New("invalid level scenario")
	// ErrLevelNotFound indicates the level doesn't exist.
	ErrLevelNotFound = errors.New("level not found")
)
