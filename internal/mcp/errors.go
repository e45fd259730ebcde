package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, gameplay.ErrInvalidKey):
		return &APIError{Code: "INVALID_KEY", Message: "key may contain only latin or cyrillic letters and digits", RecoveryHint: "Retype the key"}
	case errors.Is(err, gameplay.ErrTeamFinished):
		return &APIError{Code: "TEAM_FINISHED", Message: "team already finished the game"}
	case errors.Is(err, gameplay.ErrTeamNotPlaying):
		return &APIError{Code: "TEAM_NOT_PLAYING", Message: "team is not playing this game", RecoveryHint: "Sign the waiver before the start"}
	case errors.Is(err, game.ErrGameNotFound):
		return &APIError{Code: "GAME_NOT_FOUND", Message: "game not found", RecoveryHint: "Call get_active_game"}
	case errors.Is(err, game.ErrGameNotStarted):
		return &APIError{Code: "GAME_NOT_STARTED", Message: "game is not running"}
	case errors.Is(err, game.ErrAnotherGameIsActive):
		return &APIError{Code: "ANOTHER_GAME_ACTIVE", Message: "another game is active", RecoveryHint: "Wait for the active game to finish"}
	case errors.Is(err, game.ErrNotAuthorizedForEdit):
		return &APIError{Code: "NOT_AUTHORIZED", Message: "player may not manage this game"}
	case errors.Is(err, game.ErrCantEditGame):
		return &APIError{Code: "GAME_LOCKED", Message: "game can't be edited in its current status"}
	case errors.Is(err, game.ErrWaiversNotOpen):
		return &APIError{Code: "WAIVERS_CLOSED", Message: "game is not collecting waivers"}
	case errors.Is(err, game.ErrNoLevels):
		return &APIError{Code: "NO_LEVELS", Message: "game has no levels", RecoveryHint: "Upload a scenario with levels"}
	case errors.Is(err, leveltest.ErrNoTest):
		return &APIError{Code: "NO_LEVEL_TEST", Message: "no test of this level is running", RecoveryHint: "Call start_level_test"}
	case errors.Is(err, leveltest.ErrLevelNotFound):
		return &APIError{Code: "LEVEL_NOT_FOUND", Message: err.Error(), RecoveryHint: "Use a level id from the game scenario"}
	case errors.Is(err, level.ErrInvalidScenario):
		return &APIError{Code: "INVALID_SCENARIO", Message: err.Error(), RecoveryHint: "Read questline://docs/scenario"}
	case errors.Is(err, team.ErrTeamNotFound):
		return &APIError{Code: "TEAM_NOT_FOUND", Message: "team not found"}
	case errors.Is(err, team.ErrPlayerNotFound):
		return &APIError{Code: "PLAYER_NOT_FOUND", Message: "player not found", RecoveryHint: "Call register_player"}
	case errors.Is(err, team.ErrPlayerNotInTeam):
		return &APIError{Code: "NOT_A_MEMBER", Message: "player is not a member of the team"}
	case errors.Is(err, team.ErrTeamNameTaken):
		return &APIError{Code: "TEAM_NAME_TAKEN", Message: "team name taken"}
	case errors.Is(err, game.ErrInvalidInput), errors.Is(err, team.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "concurrent modification", RecoveryHint: "Retry the call"}
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return &APIError{Code: "NOT_FOUND", Message: "referenced entity does not exist"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "not found"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
