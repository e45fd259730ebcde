package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/questline/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service handles team roster operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// NewService creates a new team service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateTeamRequest describes a new team.
type CreateTeamRequest struct {
	Name      string
	ChatID    *string
	CaptainID string
}

// CreateTeam creates a team and makes the captain its first member.
func (s *Service) CreateTeam(ctx context.Context, req CreateTeamRequest) (*Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	t := &Team{
		ID:        uuid.NewString(),
		Name:      name,
		ChatID:    req.ChatID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateTeam(ctx, t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrTeamNameTaken
		}
		return nil, fmt.Errorf("creating team: %w", err)
	}

	if req.CaptainID != "" {
		if err := s.JoinTeam(ctx, req.CaptainID, t.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("team_id", t.ID).Str("name", t.Name).Msg("team created")
	return t, nil
}

// RegisterPlayer creates a player without a team.
func (s *Service) RegisterPlayer(ctx context.Context, name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	p := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreatePlayer(ctx, p); err != nil {
		return nil, fmt.Errorf("creating player: %w", err)
	}
	return p, nil
}

// JoinTeam moves a player into a team.
func (s *Service) JoinTeam(ctx context.Context, playerID, teamID string) error {
	if _, err := s.repo.GetTeam(ctx, teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("loading team: %w", err)
	}
	if err := s.repo.SetPlayerTeam(ctx, playerID, &teamID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("joining team: %w", err)
	}
	return nil
}

// LeaveTeam removes a player from their team.
func (s *Service) LeaveTeam(ctx context.Context, playerID string) error {
	if err := s.repo.SetPlayerTeam(ctx, playerID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("leaving team: %w", err)
	}
	return nil
}

// Get returns a team by ID.
func (s *Service) Get(ctx context.Context, id string) (*Team, error) {
	t, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}
	return t, nil
}

// List returns every team.
func (s *Service) List(ctx context.Context) ([]Team, error) {
	return s.repo.ListTeams(ctx)
}

// CheckMember returns ErrPlayerNotInTeam unless the player belongs to the team.
func (s *Service) CheckMember(ctx context.Context, playerID, teamID string) error {
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("loading player: %w", err)
	}
	if p.TeamID == nil || *p.TeamID != teamID {
		return ErrPlayerNotInTeam
	}
	return nil
}
