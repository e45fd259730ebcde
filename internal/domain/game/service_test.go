package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
	"github.com/ganot/questline/internal/repository/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      *game.Service
	games    *mocks.GameRepository
	levels   *mocks.LevelRepository
	roster   *mocks.RosterRepository
	progress *mocks.ProgressRepository
	members  *mocks.MemberChecker
	view     *mocks.View
	hints    *mocks.HintPlanner
	sched    *mocks.Scheduler
	notifier *mocks.Notifier
	log      *mocks.GameLog
	clock    *clockwork.FakeClock
}

func newFixture() *fixture {
	f := &fixture{
		games:    &mocks.GameRepository{},
		levels:   &mocks.LevelRepository{},
		roster:   &mocks.RosterRepository{},
		progress: &mocks.ProgressRepository{},
		members:  &mocks.MemberChecker{},
		view:     &mocks.View{},
		hints:    &mocks.HintPlanner{},
		sched:    &mocks.Scheduler{},
		notifier: &mocks.Notifier{},
		log:      &mocks.GameLog{},
		clock:    clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)),
	}
	f.svc = game.NewService(game.Deps{
		Tx:        mocks.Transactor{},
		Games:     f.games,
		Levels:    f.levels,
		Roster:    f.roster,
		Progress:  f.progress,
		Members:   f.members,
		View:      f.view,
		Hints:     f.hints,
		Scheduler: f.sched,
		Notifier:  f.notifier,
		Log:       f.log,
		Clock:     f.clock,
		Logger:    zerolog.Nop(),
	})
	return f
}

func puzzleLevel(id string) level.Level {
	return level.Level{ID: id, NameID: id, Scenario: level.Scenario{
		ID:   id,
		Keys: []string{"SHOOT"},
		TimeHints: []level.TimeHint{
			{Time: 0, Hint: []level.HintPart{{Type: level.HintText, Text: "puzzle"}}},
			{Time: 10, Hint: []level.HintPart{{Type: level.HintText, Text: "hint"}}},
		},
	}}
}

func (f *fixture) startable(status game.Status) *game.Game {
	start := f.clock.Now()
	g := &game.Game{ID: "g1", AuthorID: "author", Name: "Night run", Status: status, StartAt: &start, Levels: []level.Level{puzzleLevel("l1"), puzzleLevel("l2")}}
	f.games.On("Get", mock.Anything, "g1").Return(g, nil)
	return g
}

func TestStart_PlacesTeamsAndSchedulesHints(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := f.startable(game.StatusGettingWaivers)
	now := f.clock.Now()
	teams := []team.Team{{ID: "t1"}, {ID: "t2"}}

	f.games.On("GetActive", mock.Anything).Return(g, nil)
	f.games.On("SetStatus", mock.Anything, "g1", game.StatusStarted).Return(nil).Once()
	f.roster.On("PlayedTeams", mock.Anything, "g1").Return(teams, nil)
	f.progress.On("SetTeamsToFirstLevel", mock.Anything, "g1", []string{"t1", "t2"}, now).Return(nil).Once()
	f.progress.On("PendingKickoffs", mock.Anything, "g1").Return([]game.Kickoff{{TeamID: "t1", LevelStartAt: now}, {TeamID: "t2", LevelStartAt: now}}, nil).Once()
	for _, tm := range teams {
		f.view.On("SendPuzzle", mock.Anything, "g1", tm, g.Levels[0]).Return(nil).Once()
		f.hints.On("ScheduleFirstHint", mock.Anything, "g1", tm, 0, g.Levels[0], now).Return(nil).Once()
		f.progress.On("ClearKickoff", mock.Anything, "g1", tm.ID).Return(nil).Once()
	}
	f.log.On("Log", mock.Anything, "g1", activity.TypeGameStarted, "Game started").Return(nil).Once()

	require.NoError(t, f.svc.Start(ctx, "g1"))
	f.games.AssertExpectations(t)
	f.progress.AssertExpectations(t)
	f.view.AssertExpectations(t)
	f.hints.AssertExpectations(t)
	f.log.AssertExpectations(t)
}

func TestStart_RetryResumesFailedTeams(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g := f.startable(game.StatusGettingWaivers)
	startedAt := f.clock.Now()
	owls, foxes := team.Team{ID: "t1"}, team.Team{ID: "t2"}

	f.games.On("GetActive", mock.Anything).Return(g, nil)
	f.games.On("SetStatus", mock.Anything, "g1", game.StatusStarted).
		Run(func(mock.Arguments) { g.Status = game.StatusStarted }).
		Return(nil).Once()
	f.roster.On("PlayedTeams", mock.Anything, "g1").Return([]team.Team{owls, foxes}, nil)
	f.progress.On("SetTeamsToFirstLevel", mock.Anything, "g1", []string{"t1", "t2"}, startedAt).Return(nil).Once()
	f.log.On("Log", mock.Anything, "g1", activity.TypeGameStarted, "Game started").Return(nil).Once()
	f.progress.On("PendingKickoffs", mock.Anything, "g1").Return([]game.Kickoff{{TeamID: "t1", LevelStartAt: startedAt}, {TeamID: "t2", LevelStartAt: startedAt}}, nil).Once()
	f.view.On("SendPuzzle", mock.Anything, "g1", owls, g.Levels[0]).Return(nil).Once()
	f.hints.On("ScheduleFirstHint", mock.Anything, "g1", owls, 0, g.Levels[0], startedAt).Return(nil).Once()
	f.progress.On("ClearKickoff", mock.Anything, "g1", "t1").Return(nil).Once()
	f.view.On("SendPuzzle", mock.Anything, "g1", foxes, g.Levels[0]).Return(errors.New("nats down")).Once()

	err := f.svc.Start(ctx, "g1")
	require.ErrorContains(t, err, "nats down")

	// The runner retries a minute later; only the Foxes are still pending and
	// their hints count from the original start.
	f.clock.Advance(time.Minute)
	f.progress.On("PendingKickoffs", mock.Anything, "g1").Return([]game.Kickoff{{TeamID: "t2", LevelStartAt: startedAt}}, nil).Once()
	f.view.On("SendPuzzle", mock.Anything, "g1", foxes, g.Levels[0]).Return(nil).Once()
	f.hints.On("ScheduleFirstHint", mock.Anything, "g1", foxes, 0, g.Levels[0], startedAt).Return(nil).Once()
	f.progress.On("ClearKickoff", mock.Anything, "g1", "t2").Return(nil).Once()

	require.NoError(t, f.svc.Start(ctx, "g1"))
	f.games.AssertNumberOfCalls(t, "SetStatus", 1)
	f.log.AssertNumberOfCalls(t, "Log", 1)
	f.view.AssertNumberOfCalls(t, "SendPuzzle", 3)
	f.hints.AssertExpectations(t)
	f.progress.AssertExpectations(t)
}

func TestStart_OutsideWindowIsNoop(t *testing.T) {
	f := newFixture()
	f.startable(game.StatusGettingWaivers)
	f.clock.Advance(30 * time.Minute)

	require.NoError(t, f.svc.Start(context.Background(), "g1"))
	f.games.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	f.view.AssertNotCalled(t, "SendPuzzle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_EarlyWakeUpWithinWindow(t *testing.T) {
	f := newFixture()
	g := f.startable(game.StatusGettingWaivers)
	startAt := f.clock.Now().Add(time.Minute)
	g.StartAt = &startAt

	f.games.On("GetActive", mock.Anything).Return(g, nil)
	f.games.On("SetStatus", mock.Anything, "g1", game.StatusStarted).Return(nil)
	f.roster.On("PlayedTeams", mock.Anything, "g1").Return([]team.Team{}, nil)
	f.progress.On("SetTeamsToFirstLevel", mock.Anything, "g1", []string{}, mock.Anything).Return(nil)
	f.progress.On("PendingKickoffs", mock.Anything, "g1").Return([]game.Kickoff{}, nil)
	f.log.On("Log", mock.Anything, "g1", activity.TypeGameStarted, "Game started").Return(nil)

	require.NoError(t, f.svc.Start(context.Background(), "g1"))
	f.games.AssertCalled(t, "SetStatus", mock.Anything, "g1", game.StatusStarted)
}

func TestStart_AlreadyStartedWithNothingPending(t *testing.T) {
	f := newFixture()
	f.startable(game.StatusStarted)
	f.progress.On("PendingKickoffs", mock.Anything, "g1").Return([]game.Kickoff{}, nil)

	require.NoError(t, f.svc.Start(context.Background(), "g1"))
	f.games.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	f.view.AssertNotCalled(t, "SendPuzzle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_SkipsGameNotTakingWaivers(t *testing.T) {
	for _, status := range []game.Status{game.StatusUnderConstruction, game.StatusReady, game.StatusFinished, game.StatusComplete} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.startable(status)

			require.NoError(t, f.svc.Start(context.Background(), "g1"))
			f.games.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
			f.progress.AssertNotCalled(t, "SetTeamsToFirstLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStart_AnotherGameIsActive(t *testing.T) {
	f := newFixture()
	f.startable(game.StatusGettingWaivers)
	f.games.On("GetActive", mock.Anything).Return(&game.Game{ID: "g2", Name: "Other", Status: game.StatusStarted}, nil)

	err := f.svc.Start(context.Background(), "g1")
	require.ErrorIs(t, err, game.ErrAnotherGameIsActive)
	f.games.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPrepare(t *testing.T) {
	f := newFixture()
	g := f.startable(game.StatusGettingWaivers)
	startAt := f.clock.Now().Add(game.PrepareLead)
	g.StartAt = &startAt
	teams := []team.Team{{ID: "t1"}}
	orgs := []team.Organizer{{ID: "o1"}}
	f.roster.On("PlayedTeams", mock.Anything, "g1").Return(teams, nil)
	f.roster.On("ListOrganizers", mock.Anything, "g1").Return(orgs, nil)
	f.view.On("PrepareGame", mock.Anything, g, teams, orgs).Return(nil).Once()

	require.NoError(t, f.svc.Prepare(context.Background(), "g1"))
	f.view.AssertExpectations(t)
}

func TestPrepare_TooEarlyIsNoop(t *testing.T) {
	f := newFixture()
	g := f.startable(game.StatusGettingWaivers)
	startAt := f.clock.Now().Add(7 * time.Minute)
	g.StartAt = &startAt

	require.NoError(t, f.svc.Prepare(context.Background(), "g1"))
	f.view.AssertNotCalled(t, "PrepareGame", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanStart(t *testing.T) {
	f := newFixture()
	g := &game.Game{ID: "g1", AuthorID: "author", Status: game.StatusGettingWaivers}
	f.games.On("Get", mock.Anything, "g1").Return(g, nil)
	f.games.On("GetActive", mock.Anything).Return(g, nil)
	startAt := f.clock.Now().Add(2 * time.Hour)
	f.games.On("SetStartAt", mock.Anything, "g1", startAt).Return(nil).Once()
	f.sched.On("PlanPrepare", mock.Anything, "g1", startAt.Add(-5*time.Minute)).Return(nil).Once()
	f.sched.On("PlanStart", mock.Anything, "g1", startAt).Return(nil).Once()
	f.log.On("Log", mock.Anything, "g1", activity.TypeStartPlanned, mock.Anything).Return(nil)

	require.NoError(t, f.svc.PlanStart(context.Background(), "g1", "author", startAt))
	f.sched.AssertExpectations(t)
	f.games.AssertExpectations(t)
}

func TestPlanStart_RequiresWaivers(t *testing.T) {
	for _, status := range []game.Status{game.StatusUnderConstruction, game.StatusReady} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", AuthorID: "author", Status: status}, nil)

			err := f.svc.PlanStart(context.Background(), "g1", "author", f.clock.Now().Add(time.Hour))
			require.ErrorIs(t, err, game.ErrWaiversNotOpen)
			f.games.AssertNotCalled(t, "SetStartAt", mock.Anything, mock.Anything, mock.Anything)
			f.sched.AssertNotCalled(t, "PlanStart", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPlanStart_NotAuthor(t *testing.T) {
	f := newFixture()
	f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", AuthorID: "author"}, nil)

	err := f.svc.PlanStart(context.Background(), "g1", "intruder", f.clock.Now())
	require.ErrorIs(t, err, game.ErrNotAuthorizedForEdit)
	f.sched.AssertNotCalled(t, "PlanStart", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartWaivers(t *testing.T) {
	f := newFixture()
	g := &game.Game{ID: "g1", AuthorID: "author", Status: game.StatusUnderConstruction, Levels: []level.Level{puzzleLevel("l1")}}
	f.games.On("Get", mock.Anything, "g1").Return(g, nil)
	f.games.On("GetActive", mock.Anything).Return(nil, repository.ErrNotFound)
	f.games.On("SetStatus", mock.Anything, "g1", game.StatusGettingWaivers).Return(nil).Once()
	f.log.On("Log", mock.Anything, "g1", activity.TypeWaiversStarted, mock.Anything).Return(nil)

	require.NoError(t, f.svc.StartWaivers(context.Background(), "g1", "author"))
	f.games.AssertExpectations(t)
}

func TestStartWaivers_AnotherGameIsActive(t *testing.T) {
	f := newFixture()
	g := &game.Game{ID: "g1", AuthorID: "author", Status: game.StatusUnderConstruction, Levels: []level.Level{puzzleLevel("l1")}}
	f.games.On("Get", mock.Anything, "g1").Return(g, nil)
	f.games.On("GetActive", mock.Anything).Return(&game.Game{ID: "g2", Status: game.StatusGettingWaivers}, nil)

	err := f.svc.StartWaivers(context.Background(), "g1", "author")
	require.ErrorIs(t, err, game.ErrAnotherGameIsActive)
}

func TestAddWaiver(t *testing.T) {
	f := newFixture()
	f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", Status: game.StatusGettingWaivers}, nil)
	w := team.Waiver{GameID: "g1", TeamID: "t1", PlayerID: "p1", Vote: team.VoteYes}
	f.members.On("CheckMember", mock.Anything, "p1", "t1").Return(nil)
	f.roster.On("UpsertWaiver", mock.Anything, w).Return(nil).Once()

	require.NoError(t, f.svc.AddWaiver(context.Background(), w))
	f.roster.AssertExpectations(t)
}

func TestAddWaiver_Closed(t *testing.T) {
	f := newFixture()
	f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", Status: game.StatusStarted}, nil)

	err := f.svc.AddWaiver(context.Background(), team.Waiver{GameID: "g1", TeamID: "t1", PlayerID: "p1", Vote: team.VoteYes})
	require.ErrorIs(t, err, game.ErrWaiversNotOpen)
}

func TestAddOrganizer_NotifiesExisting(t *testing.T) {
	f := newFixture()
	f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", AuthorID: "author", Status: game.StatusGettingWaivers}, nil)
	existing := []team.Organizer{{ID: "o1", PlayerID: "p0"}}
	f.roster.On("ListOrganizers", mock.Anything, "g1").Return(existing, nil)
	f.roster.On("AddOrganizer", mock.Anything, mock.Anything).Return(nil)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e event.Event) bool {
		org, ok := e.(event.NewOrg)
		return ok && org.Org.PlayerID == "p2" && len(org.Recipients()) == 1
	})).Return(nil).Once()

	org, err := f.svc.AddOrganizer(context.Background(), "g1", "author", "p2", true)
	require.NoError(t, err)
	require.True(t, org.CanSpy)
	f.notifier.AssertExpectations(t)
}

func TestUpsert_CreatesGame(t *testing.T) {
	f := newFixture()
	scn := game.Scenario{Name: "Night run", Levels: []level.Scenario{puzzleLevel("l1").Scenario, puzzleLevel("l2").Scenario}}
	f.games.On("GetByName", mock.Anything, "Night run").Return(nil, repository.ErrNotFound)
	f.games.On("Create", mock.Anything, mock.MatchedBy(func(g *game.Game) bool {
		return g.Status == game.StatusUnderConstruction && g.AuthorID == "author"
	})).Return(nil).Once()
	f.levels.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		lvl := args.Get(1).(*level.Level)
		lvl.ID = "id-" + lvl.NameID
	}).Return(nil).Twice()
	f.levels.On("AttachToGame", mock.Anything, mock.Anything, []string{"id-l1", "id-l2"}).Return(nil).Once()
	f.games.On("Get", mock.Anything, mock.Anything).Return(&game.Game{ID: "new", Name: "Night run"}, nil)

	g, err := f.svc.Upsert(context.Background(), "author", scn)
	require.NoError(t, err)
	require.Equal(t, "Night run", g.Name)
	f.levels.AssertExpectations(t)
}

func TestUpsert_OtherAuthor(t *testing.T) {
	f := newFixture()
	scn := game.Scenario{Name: "Night run", Levels: []level.Scenario{puzzleLevel("l1").Scenario}}
	f.games.On("GetByName", mock.Anything, "Night run").Return(&game.Game{ID: "g1", AuthorID: "someone"}, nil)

	_, err := f.svc.Upsert(context.Background(), "author", scn)
	require.ErrorIs(t, err, game.ErrNotAuthorizedForEdit)
}

func TestUpsert_InvalidScenario(t *testing.T) {
	f := newFixture()
	bad := puzzleLevel("l1").Scenario
	bad.Keys = []string{"no spaces allowed"}

	_, err := f.svc.Upsert(context.Background(), "author", game.Scenario{Name: "x", Levels: []level.Scenario{bad}})
	require.True(t, errors.Is(err, level.ErrInvalidScenario))
}

func TestComplete(t *testing.T) {
	f := newFixture()
	f.games.On("Get", mock.Anything, "g1").Return(&game.Game{ID: "g1", AuthorID: "author", Status: game.StatusStarted}, nil)

	require.ErrorIs(t, f.svc.Complete(context.Background(), "g1", "author"), game.ErrCantEditGame)
}
