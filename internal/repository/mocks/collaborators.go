package mocks

import (
	"context"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/stretchr/testify/mock"
)

// View is a mock for gameplay.View, game.View and leveltest.View.
type View struct {
	mock.Mock
}

func (m *View) PrepareGame(ctx context.Context, g *game.Game, teams []team.Team, orgs []team.Organizer) error {
	args := m.Called(ctx, g, teams, orgs)
	return args.Error(0)
}

func (m *View) SendPuzzle(ctx context.Context, gameID string, t team.Team, lvl level.Level) error {
	args := m.Called(ctx, gameID, t, lvl)
	return args.Error(0)
}

func (m *View) SendHint(ctx context.Context, gameID string, t team.Team, hintNumber int, lvl level.Level) error {
	args := m.Called(ctx, gameID, t, hintNumber, lvl)
	return args.Error(0)
}

func (m *View) DuplicateKey(ctx context.Context, key gameplay.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *View) CorrectKey(ctx context.Context, key gameplay.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *View) WrongKey(ctx context.Context, key gameplay.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *View) GameFinished(ctx context.Context, gameID string, t team.Team) error {
	args := m.Called(ctx, gameID, t)
	return args.Error(0)
}

func (m *View) GameFinishedByAll(ctx context.Context, gameID string, t team.Team) error {
	args := m.Called(ctx, gameID, t)
	return args.Error(0)
}

func (m *View) SendTestPuzzle(ctx context.Context, s leveltest.Suite, lvl level.Level) error {
	args := m.Called(ctx, s, lvl)
	return args.Error(0)
}

func (m *View) SendTestHint(ctx context.Context, s leveltest.Suite, hintNumber int, lvl level.Level) error {
	args := m.Called(ctx, s, hintNumber, lvl)
	return args.Error(0)
}

func (m *View) TestKey(ctx context.Context, key leveltest.KeyTime) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Scheduler is a mock for gameplay.HintScheduler, game.Scheduler and leveltest.HintScheduler.
type Scheduler struct {
	mock.Mock
}

func (m *Scheduler) PlanHint(ctx context.Context, at time.Time, ref gameplay.HintRef) error {
	args := m.Called(ctx, at, ref)
	return args.Error(0)
}

func (m *Scheduler) PlanPrepare(ctx context.Context, gameID string, at time.Time) error {
	args := m.Called(ctx, gameID, at)
	return args.Error(0)
}

func (m *Scheduler) PlanStart(ctx context.Context, gameID string, at time.Time) error {
	args := m.Called(ctx, gameID, at)
	return args.Error(0)
}

func (m *Scheduler) PlanTestHint(ctx context.Context, at time.Time, ref leveltest.HintRef) error {
	args := m.Called(ctx, at, ref)
	return args.Error(0)
}

// HintPlanner is a mock for game.HintPlanner.
type HintPlanner struct {
	mock.Mock
}

func (m *HintPlanner) ScheduleFirstHint(ctx context.Context, gameID string, t team.Team, levelNumber int, lvl level.Level, now time.Time) error {
	args := m.Called(ctx, gameID, t, levelNumber, lvl, now)
	return args.Error(0)
}

// Notifier is a mock for organizer notification.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, e event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// GameLog is a mock for the public game log.
type GameLog struct {
	mock.Mock
}

func (m *GameLog) Log(ctx context.Context, gameID string, typ activity.Type, message string) error {
	args := m.Called(ctx, gameID, typ, message)
	return args.Error(0)
}

// MemberChecker is a mock for game.MemberChecker.
type MemberChecker struct {
	mock.Mock
}

func (m *MemberChecker) CheckMember(ctx context.Context, playerID, teamID string) error {
	args := m.Called(ctx, playerID, teamID)
	return args.Error(0)
}
