package leveltest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Deps holds the collaborators of the level test service.
type Deps struct {
	Tests    Repository
	Games    GameRepository
	Roster   Roster
	Locks    Locker
	View     View
	Hints    HintScheduler
	Notifier Notifier
	Clock    clockwork.Clock
	Logger   zerolog.Logger
}

// Service runs level tests.
type Service struct {
	tests    Repository
	games    GameRepository
	roster   Roster
	locks    Locker
	view     View
	hints    HintScheduler
	notifier Notifier
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewService creates a new level test service.
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		tests:    d.Tests,
		games:    d.Games,
		roster:   d.Roster,
		locks:    d.Locks,
		view:     d.View,
		hints:    d.Hints,
		notifier: d.Notifier,
		clock:    clock,
		logger:   d.Logger,
	}
}

// Start begins a test of the level for the tester, dropping any earlier run
// of the same suite, and sends the tester the puzzle.
func (s *Service) Start(ctx context.Context, suite Suite) (*Run, error) {
	_, lvl, _, err := s.load(ctx, suite)
	if err != nil {
		return nil, err
	}

	run := &Run{Suite: suite, StartedAt: s.clock.Now()}
	err = s.locks.WithTeamLock(ctx, suite.lockKey(), func(ctx context.Context) error {
		return s.tests.Start(ctx, run)
	})
	if err != nil {
		return nil, fmt.Errorf("starting level test: %w", err)
	}

	if err := s.view.SendTestPuzzle(ctx, suite, lvl); err != nil {
		return run, fmt.Errorf("sending test puzzle: %w", err)
	}
	if at, ok := level.FirstHintTime(lvl, run.StartedAt); ok {
		ref := HintRef{Suite: suite, StartedAt: run.StartedAt, HintNumber: 1}
		if err := s.hints.PlanTestHint(ctx, at, ref); err != nil {
			return run, fmt.Errorf("scheduling first test hint: %w", err)
		}
	}

	s.logger.Info().
		Str("game_id", suite.GameID).
		Str("level_id", suite.LevelID).
		Str("tester_id", suite.TesterID).
		Msg("level test started")
	return run, nil
}

// CheckKey checks a key typed by the tester. The key that completes the level
// ends the test and notifies the organizers with its duration.
func (s *Service) CheckKey(ctx context.Context, suite Suite, key string) (*CheckResult, error) {
	if !level.IsKeyValid(key) {
		return nil, fmt.Errorf("%w: %q", gameplay.ErrInvalidKey, key)
	}
	text := level.NormalizeKey(key)

	g, lvl, orgs, err := s.load(ctx, suite)
	if err != nil {
		return nil, err
	}

	var res *CheckResult
	err = s.locks.WithTeamLock(ctx, suite.lockKey(), func(ctx context.Context) error {
		var err error
		res, err = s.check(ctx, suite, lvl, text)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.view.TestKey(ctx, res.Key); err != nil {
		return res, fmt.Errorf("sending test key: %w", err)
	}
	if !res.Completed {
		return res, nil
	}

	s.logger.Info().
		Str("game_id", suite.GameID).
		Str("level_id", suite.LevelID).
		Str("tester_id", suite.TesterID).
		Dur("duration", res.Duration).
		Msg("level test completed")
	e := event.LevelTestCompleted{
		GameID:   g.ID,
		LevelID:  suite.LevelID,
		TesterID: suite.TesterID,
		Duration: res.Duration,
		Orgs:     withAuthor(g, orgs),
	}
	if err := s.notifier.Notify(ctx, e); err != nil {
		return res, fmt.Errorf("notifying organizers: %w", err)
	}
	return res, nil
}

// check classifies and saves the key. Callers hold the test lock.
func (s *Service) check(ctx context.Context, suite Suite, lvl level.Level, text string) (*CheckResult, error) {
	run, err := s.run(ctx, suite)
	if err != nil {
		return nil, err
	}
	typed, err := s.tests.CorrectKeys(ctx, suite)
	if err != nil {
		return nil, fmt.Errorf("loading typed keys: %w", err)
	}
	found := level.NewKeySet(typed...)
	required := lvl.KeySet()

	result := gameplay.ResultWrong
	switch {
	case found.Contains(text):
		result = gameplay.ResultDuplicate
	case required.Contains(text):
		result = gameplay.ResultCorrect
	}

	now := s.clock.Now()
	res := &CheckResult{Key: KeyTime{Suite: suite, Text: text, Result: result, EnteredAt: now}}
	if err := s.tests.SaveKey(ctx, &res.Key); err != nil {
		return nil, fmt.Errorf("saving test key: %w", err)
	}
	if result != gameplay.ResultCorrect {
		return res, nil
	}

	found[text] = struct{}{}
	if !found.Equal(required) {
		return res, nil
	}
	res.Completed = true
	res.Duration = now.Sub(run.StartedAt)
	if err := s.tests.Delete(ctx, suite); err != nil {
		return nil, fmt.Errorf("closing level test: %w", err)
	}
	return res, nil
}

// Cancel drops the tester's test of the level. Hints already planned for it
// go stale.
func (s *Service) Cancel(ctx context.Context, suite Suite) error {
	if _, _, _, err := s.load(ctx, suite); err != nil {
		return err
	}
	return s.locks.WithTeamLock(ctx, suite.lockKey(), func(ctx context.Context) error {
		if _, err := s.run(ctx, suite); err != nil {
			return err
		}
		if err := s.tests.Delete(ctx, suite); err != nil {
			return fmt.Errorf("cancelling level test: %w", err)
		}
		s.logger.Info().
			Str("game_id", suite.GameID).
			Str("level_id", suite.LevelID).
			Str("tester_id", suite.TesterID).
			Msg("level test cancelled")
		return nil
	})
}

// SendTestHint delivers a planned test hint and plans the one after it. Hints
// of a finished, cancelled or restarted run are dropped.
func (s *Service) SendTestHint(ctx context.Context, ref HintRef) error {
	log := s.logger.With().
		Str("game_id", ref.GameID).
		Str("level_id", ref.LevelID).
		Str("tester_id", ref.TesterID).
		Int("hint", ref.HintNumber).
		Logger()

	run, err := s.run(ctx, ref.Suite)
	if errors.Is(err, ErrNoTest) {
		log.Debug().Msg("no level test running, hint skipped")
		return nil
	}
	if err != nil {
		return err
	}
	if !run.StartedAt.Equal(ref.StartedAt) {
		log.Debug().Time("started_at", run.StartedAt).Msg("level test restarted, hint skipped")
		return nil
	}

	g, err := s.loadGame(ctx, ref.GameID)
	if err != nil {
		return err
	}
	lvl, err := findLevel(g, ref.LevelID)
	if err != nil {
		return err
	}
	hint, ok := lvl.Hint(ref.HintNumber)
	if !ok {
		log.Warn().Msg("hint number out of range, skipped")
		return nil
	}

	if err := s.view.SendTestHint(ctx, ref.Suite, ref.HintNumber, lvl); err != nil {
		return fmt.Errorf("sending test hint: %w", err)
	}
	if lvl.IsLastHint(ref.HintNumber) {
		return nil
	}

	next, _ := lvl.Hint(ref.HintNumber + 1)
	nextRef := ref
	nextRef.HintNumber++
	if err := s.hints.PlanTestHint(ctx, level.NextHintTime(hint.Time, next.Time, s.clock.Now()), nextRef); err != nil {
		return fmt.Errorf("scheduling next test hint: %w", err)
	}
	return nil
}

// load resolves the game and level of suite and checks the tester may test it.
func (s *Service) load(ctx context.Context, suite Suite) (*game.Game, level.Level, []team.Organizer, error) {
	g, err := s.loadGame(ctx, suite.GameID)
	if err != nil {
		return nil, level.Level{}, nil, err
	}
	if g.Status.IsTerminal() {
		return nil, level.Level{}, nil, game.ErrCantEditGame
	}
	lvl, err := findLevel(g, suite.LevelID)
	if err != nil {
		return nil, level.Level{}, nil, err
	}
	orgs, err := s.roster.ListOrganizers(ctx, g.ID)
	if err != nil {
		return nil, level.Level{}, nil, fmt.Errorf("loading organizers: %w", err)
	}
	if !g.IsAuthor(suite.TesterID) && !isOrganizer(orgs, suite.TesterID) {
		return nil, level.Level{}, nil, game.ErrNotAuthorizedForEdit
	}
	return g, lvl, orgs, nil
}

func (s *Service) loadGame(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.games.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, game.ErrGameNotFound
		}
		return nil, fmt.Errorf("loading game: %w", err)
	}
	return g, nil
}

func (s *Service) run(ctx context.Context, suite Suite) (*Run, error) {
	run, err := s.tests.Get(ctx, suite)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoTest
		}
		return nil, fmt.Errorf("loading level test: %w", err)
	}
	return run, nil
}

func findLevel(g *game.Game, id string) (level.Level, error) {
	for _, lvl := range g.Levels {
		if lvl.NameID == id {
			return lvl, nil
		}
	}
	return level.Level{}, fmt.Errorf("%w: %q", ErrLevelNotFound, id)
}

func isOrganizer(orgs []team.Organizer, playerID string) bool {
	for _, o := range orgs {
		if o.PlayerID == playerID {
			return true
		}
	}
	return false
}

// withAuthor adds the game author to orgs unless already there.
func withAuthor(g *game.Game, orgs []team.Organizer) []team.Organizer {
	if isOrganizer(orgs, g.AuthorID) {
		return orgs
	}
	out := make([]team.Organizer, 0, len(orgs)+1)
	out = append(out, team.Organizer{GameID: g.ID, PlayerID: g.AuthorID})
	return append(out, orgs...)
}
