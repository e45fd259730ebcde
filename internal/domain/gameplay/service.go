package gameplay

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Deps holds the collaborators of the gameplay service.
type Deps struct {
	Tx       Transactor
	Keys     KeyRepository
	Progress ProgressRepository
	Games    GameRepository
	Teams    TeamRepository
	Locks    Locker
	View     View
	Hints    HintScheduler
	Notifier Notifier
	Log      GameLog
	Clock    clockwork.Clock
	Logger   zerolog.Logger
}

// Service runs a started game: key checks, level transitions and hints.
type Service struct {
	tx       Transactor
	keys     KeyRepository
	progress ProgressRepository
	games    GameRepository
	teams    TeamRepository
	locks    Locker
	view     View
	hints    HintScheduler
	notifier Notifier
	log      GameLog
	clock    clockwork.Clock
	logger   zerolog.Logger
}

// NewService creates a new gameplay service.
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		tx:       d.Tx,
		keys:     d.Keys,
		progress: d.Progress,
		games:    d.Games,
		teams:    d.Teams,
		locks:    d.Locks,
		view:     d.View,
		hints:    d.Hints,
		notifier: d.Notifier,
		log:      d.Log,
		clock:    clock,
		logger:   d.Logger,
	}
}

// CheckKey records a key typed by a player and reacts to it: feedback to the
// team, and on level completion the move to the next level or the finish.
func (s *Service) CheckKey(ctx context.Context, req SubmitRequest) (*InsertedKey, error) {
	if !level.IsKeyValid(req.Key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, req.Key)
	}
	text := level.NormalizeKey(req.Key)

	g, err := s.loadGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if g.Status != game.StatusStarted {
		return nil, game.ErrGameNotStarted
	}
	t, err := s.loadTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	var inserted *InsertedKey
	err = s.locks.WithTeamLock(ctx, t.ID, func(ctx context.Context) error {
		var err error
		inserted, err = s.submitKey(ctx, g, t.ID, req.PlayerID, text)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.dispatch(ctx, g, *t, inserted); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// submitKey classifies and saves the key, and moves the team to the next level
// when the key completes the current one. Callers hold the team lock.
func (s *Service) submitKey(ctx context.Context, g *game.Game, teamID, playerID, text string) (*InsertedKey, error) {
	var inserted *InsertedKey
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		cur, err := s.currentLevel(ctx, g.ID, teamID)
		if err != nil {
			return err
		}
		lvl, ok := g.Level(cur.LevelNumber)
		if !ok {
			return ErrTeamFinished
		}
		required := lvl.KeySet()

		duplicate, err := s.keys.IsKeyDuplicate(ctx, g.ID, teamID, cur.LevelNumber, text)
		if err != nil {
			return fmt.Errorf("checking duplicate key: %w", err)
		}
		result := ResultWrong
		switch {
		case duplicate:
			result = ResultDuplicate
		case required.Contains(text):
			result = ResultCorrect
		}

		now := s.clock.Now()
		key := KeyTime{
			GameID:      g.ID,
			TeamID:      teamID,
			PlayerID:    playerID,
			LevelNumber: cur.LevelNumber,
			Text:        text,
			Result:      result,
			EnteredAt:   now,
		}
		if err := s.keys.SaveKey(ctx, &key); err != nil {
			return fmt.Errorf("saving key: %w", err)
		}
		inserted = &InsertedKey{KeyTime: key}

		if result != ResultCorrect {
			return nil
		}
		typed, err := s.keys.CorrectTypedKeys(ctx, g.ID, teamID, cur.LevelNumber)
		if err != nil {
			return fmt.Errorf("loading typed keys: %w", err)
		}
		if !level.NewKeySet(typed...).Equal(required) {
			return nil
		}
		next := &LevelTime{GameID: g.ID, TeamID: teamID, LevelNumber: cur.LevelNumber + 1, StartAt: now}
		if err := s.progress.LevelUp(ctx, next); err != nil {
			return fmt.Errorf("level up: %w", err)
		}
		inserted.IsLevelUp = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func (s *Service) dispatch(ctx context.Context, g *game.Game, t team.Team, key *InsertedKey) error {
	var err error
	switch key.Result {
	case ResultDuplicate:
		err = s.view.DuplicateKey(ctx, key.KeyTime)
	case ResultCorrect:
		err = s.view.CorrectKey(ctx, key.KeyTime)
	default:
		err = s.view.WrongKey(ctx, key.KeyTime)
	}
	if err != nil {
		return fmt.Errorf("sending key feedback: %w", err)
	}

	if !key.IsLevelUp {
		return nil
	}
	return s.afterLevelUp(ctx, g, t, key.LevelNumber+1, key.EnteredAt)
}

// Progress reports the team's current level and the keys solved on it.
func (s *Service) Progress(ctx context.Context, gameID, teamID string) (*TeamProgress, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	cur, err := s.currentLevel(ctx, g.ID, teamID)
	if err != nil {
		return nil, err
	}
	p := &TeamProgress{
		GameID:      g.ID,
		TeamID:      teamID,
		LevelNumber: cur.LevelNumber,
		LevelStart:  cur.StartAt,
		Finished:    cur.LevelNumber >= g.LevelsCount(),
	}
	if p.Finished {
		return p, nil
	}
	typed, err := s.keys.CorrectTypedKeys(ctx, g.ID, teamID, cur.LevelNumber)
	if err != nil {
		return nil, fmt.Errorf("loading typed keys: %w", err)
	}
	p.CorrectKeys = level.NewKeySet(typed...).Sorted()
	return p, nil
}

// Keys returns every key the team submitted in the game.
func (s *Service) Keys(ctx context.Context, gameID, teamID string) ([]KeyTime, error) {
	return s.keys.ListKeys(ctx, gameID, teamID)
}

func (s *Service) currentLevel(ctx context.Context, gameID, teamID string) (*LevelTime, error) {
	cur, err := s.progress.CurrentLevel(ctx, gameID, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotPlaying
		}
		return nil, fmt.Errorf("loading current level: %w", err)
	}
	return cur, nil
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

func (s *Service) loadTeam(ctx context.Context, id string) (*team.Team, error) {
	t, err := s.teams.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, team.ErrTeamNotFound
		}
		return nil, fmt.Errorf("loading team: %w", err)
	}
	return t, nil
}
