package gameplay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
)

// ScheduleFirstHint plans hint #1 of lvl for a team that reached it at now.
// Levels holding only the puzzle need nothing scheduled.
func (s *Service) ScheduleFirstHint(ctx context.Context, gameID string, t team.Team, levelNumber int, lvl level.Level, now time.Time) error {
	at, ok := level.FirstHintTime(lvl, now)
	if !ok {
		s.logger.Debug().Str("game_id", gameID).Str("team_id", t.ID).Int("level", levelNumber).Msg("level has no hints to schedule")
		return nil
	}
	ref := HintRef{GameID: gameID, TeamID: t.ID, LevelNumber: levelNumber, HintNumber: 1}
	if err := s.hints.PlanHint(ctx, at, ref); err != nil {
		return fmt.Errorf("scheduling first hint: %w", err)
	}
	return nil
}

// SendHint delivers a scheduled hint and plans the one after it. A hint for a
// level the team has already left is dropped.
func (s *Service) SendHint(ctx context.Context, ref HintRef) error {
	g, err := s.loadGame(ctx, ref.GameID)
	if err != nil {
		return err
	}
	log := s.logger.With().
		Str("game_id", ref.GameID).
		Str("team_id", ref.TeamID).
		Int("level", ref.LevelNumber).
		Int("hint", ref.HintNumber).
		Logger()

	if g.Status != game.StatusStarted {
		log.Debug().Str("status", string(g.Status)).Msg("game not running, hint skipped")
		return nil
	}
	cur, err := s.currentLevel(ctx, g.ID, ref.TeamID)
	if err != nil {
		if errors.Is(err, ErrTeamNotPlaying) {
			log.Debug().Msg("team not playing, hint skipped")
			return nil
		}
		return err
	}
	if cur.LevelNumber != ref.LevelNumber {
		log.Debug().Int("current_level", cur.LevelNumber).Msg("team not on level, hint skipped")
		return nil
	}

	lvl, ok := g.Level(ref.LevelNumber)
	if !ok {
		return fmt.Errorf("level %d missing in game %s", ref.LevelNumber, g.ID)
	}
	hint, ok := lvl.Hint(ref.HintNumber)
	if !ok {
		log.Warn().Msg("hint number out of range, skipped")
		return nil
	}
	t, err := s.loadTeam(ctx, ref.TeamID)
	if err != nil {
		return err
	}

	if err := s.view.SendHint(ctx, g.ID, *t, ref.HintNumber, lvl); err != nil {
		return fmt.Errorf("sending hint: %w", err)
	}
	if lvl.IsLastHint(ref.HintNumber) {
		log.Debug().Msg("last hint sent")
		return nil
	}

	next, _ := lvl.Hint(ref.HintNumber + 1)
	at := level.NextHintTime(hint.Time, next.Time, s.clock.Now())
	nextRef := ref
	nextRef.HintNumber++
	if err := s.hints.PlanHint(ctx, at, nextRef); err != nil {
		return fmt.Errorf("scheduling next hint: %w", err)
	}
	return nil
}

// AvailableHints returns the hints of the team's current level whose time has come.
func (s *Service) AvailableHints(ctx context.Context, gameID, teamID string) ([]level.TimeHint, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != game.StatusStarted {
		return nil, game.ErrGameNotStarted
	}
	cur, err := s.currentLevel(ctx, g.ID, teamID)
	if err != nil {
		return nil, err
	}
	lvl, ok := g.Level(cur.LevelNumber)
	if !ok {
		return nil, ErrTeamFinished
	}
	return lvl.AvailableHints(s.clock.Since(cur.StartAt)), nil
}
