package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ErrInvalidInput indicates an empty log entry.
var ErrInvalidInput = errors.New("invalid game log input")

// Service appends to and reads the public game log.
type Service struct {
	repo   Repository
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewService creates a new game log service.
func NewService(repo Repository, clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

// Log appends an entry to a game's log.
func (s *Service) Log(ctx context.Context, gameID string, typ Type, message string) error {
	if gameID == "" || message == "" {
		return ErrInvalidInput
	}
	entry := &Entry{
		GameID:    gameID,
		Type:      typ,
		Message:   message,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging game event: %w", err)
	}
	s.logger.Info().Str("game_id", gameID).Str("type", string(typ)).Msg(message)
	return nil
}

// Recent lists game log entries, newest first.
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]Entry, error) {
	return s.repo.List(ctx, opts)
}
