package mocks

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/stretchr/testify/mock"
)

// Transactor runs the callback directly.
type Transactor struct{}

func (Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// GameRepository is a mock for game.Repository.
type GameRepository struct {
	mock.Mock
}

func (m *GameRepository) Create(ctx context.Context, g *game.Game) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *GameRepository) Get(ctx context.Context, id string) (*game.Game, error) {
	args := m.Called(ctx, id)
	if g, ok := args.Get(0).(*game.Game); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) GetByName(ctx context.Context, name string) (*game.Game, error) {
	args := m.Called(ctx, name)
	if g, ok := args.Get(0).(*game.Game); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) GetActive(ctx context.Context) (*game.Game, error) {
	args := m.Called(ctx)
	if g, ok := args.Get(0).(*game.Game); ok {
		return g, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *GameRepository) SetStatus(ctx context.Context, id string, status game.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *GameRepository) SetStartAt(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// LevelRepository is a mock for game.LevelRepository.
type LevelRepository struct {
	mock.Mock
}

func (m *LevelRepository) Upsert(ctx context.Context, lvl *level.Level) error {
	args := m.Called(ctx, lvl)
	return args.Error(0)
}

func (m *LevelRepository) AttachToGame(ctx context.Context, gameID string, levelIDs []string) error {
	args := m.Called(ctx, gameID, levelIDs)
	return args.Error(0)
}

// RosterRepository is a mock for game.RosterRepository and gameplay.TeamRepository.
type RosterRepository struct {
	mock.Mock
}

func (m *RosterRepository) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*team.Team); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) PlayedTeams(ctx context.Context, gameID string) ([]team.Team, error) {
	args := m.Called(ctx, gameID)
	if teams, ok := args.Get(0).([]team.Team); ok {
		return teams, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RosterRepository) UpsertWaiver(ctx context.Context, w team.Waiver) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *RosterRepository) AddOrganizer(ctx context.Context, org *team.Organizer) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *RosterRepository) ListOrganizers(ctx context.Context, gameID string) ([]team.Organizer, error) {
	args := m.Called(ctx, gameID)
	if orgs, ok := args.Get(0).([]team.Organizer); ok {
		return orgs, args.Error(1)
	}
	return nil, args.Error(1)
}

// TeamRepository is a mock for team.Repository.
type TeamRepository struct {
	mock.Mock
}

func (m *TeamRepository) CreateTeam(ctx context.Context, t *team.Team) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TeamRepository) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*team.Team); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TeamRepository) ListTeams(ctx context.Context) ([]team.Team, error) {
	args := m.Called(ctx)
	if teams, ok := args.Get(0).([]team.Team); ok {
		return teams, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TeamRepository) CreatePlayer(ctx context.Context, p *team.Player) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *TeamRepository) GetPlayer(ctx context.Context, id string) (*team.Player, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*team.Player); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TeamRepository) SetPlayerTeam(ctx context.Context, playerID string, teamID *string) error {
	args := m.Called(ctx, playerID, teamID)
	return args.Error(0)
}

// ProgressRepository is a mock for game.ProgressRepository and gameplay.ProgressRepository.
type ProgressRepository struct {
	mock.Mock
}

func (m *ProgressRepository) SetTeamsToFirstLevel(ctx context.Context, gameID string, teamIDs []string, at time.Time) error {
	args := m.Called(ctx, gameID, teamIDs, at)
	return args.Error(0)
}

func (m *ProgressRepository) PendingKickoffs(ctx context.Context, gameID string) ([]game.Kickoff, error) {
	args := m.Called(ctx, gameID)
	if ks, ok := args.Get(0).([]game.Kickoff); ok {
		return ks, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProgressRepository) ClearKickoff(ctx context.Context, gameID, teamID string) error {
	args := m.Called(ctx, gameID, teamID)
	return args.Error(0)
}

func (m *ProgressRepository) CurrentLevel(ctx context.Context, gameID, teamID string) (*gameplay.LevelTime, error) {
	args := m.Called(ctx, gameID, teamID)
	if lt, ok := args.Get(0).(*gameplay.LevelTime); ok {
		return lt, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProgressRepository) LevelUp(ctx context.Context, lt *gameplay.LevelTime) error {
	args := m.Called(ctx, lt)
	return args.Error(0)
}

func (m *ProgressRepository) IsAllTeamsFinished(ctx context.Context, gameID string, levelsCount int) (bool, error) {
	args := m.Called(ctx, gameID, levelsCount)
	return args.Bool(0), args.Error(1)
}

// KeyRepository is a mock for gameplay.KeyRepository.
type KeyRepository struct {
	mock.Mock
}

func (m *KeyRepository) SaveKey(ctx context.Context, key *gameplay.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KeyRepository) IsKeyDuplicate(ctx context.Context, gameID, teamID string, levelNumber int, text string) (bool, error) {
	args := m.Called(ctx, gameID, teamID, levelNumber, text)
	return args.Bool(0), args.Error(1)
}

func (m *KeyRepository) CorrectTypedKeys(ctx context.Context, gameID, teamID string, levelNumber int) ([]string, error) {
	args := m.Called(ctx, gameID, teamID, levelNumber)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KeyRepository) ListKeys(ctx context.Context, gameID, teamID string) ([]gameplay.KeyTime, error) {
	args := m.Called(ctx, gameID, teamID)
	if keys, ok := args.Get(0).([]gameplay.KeyTime); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// LevelTestRepository is a mock for leveltest.Repository.
type LevelTestRepository struct {
	mock.Mock
}

func (m *LevelTestRepository) Start(ctx context.Context, run *leveltest.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *LevelTestRepository) Get(ctx context.Context, s leveltest.Suite) (*leveltest.Run, error) {
	args := m.Called(ctx, s)
	if run, ok := args.Get(0).(*leveltest.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LevelTestRepository) SaveKey(ctx context.Context, key *leveltest.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *LevelTestRepository) CorrectKeys(ctx context.Context, s leveltest.Suite) ([]string, error) {
	args := m.Called(ctx, s)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LevelTestRepository) Delete(ctx context.Context, s leveltest.Suite) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
