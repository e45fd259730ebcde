package gameplay

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/team"
)

// afterLevelUp runs once the team has reached levelNumber: either the next
// level is handed out, or the team has finished.
func (s *Service) afterLevelUp(ctx context.Context, g *game.Game, t team.Team, levelNumber int, at time.Time) error {
	lvl, ok := g.Level(levelNumber)
	if !ok {
		return s.finishTeam(ctx, g, t)
	}

	if err := s.view.SendPuzzle(ctx, g.ID, t, lvl); err != nil {
		return fmt.Errorf("sending puzzle: %w", err)
	}
	if err := s.ScheduleFirstHint(ctx, g.ID, t, levelNumber, lvl, at); err != nil {
		return err
	}

	orgs, err := s.spyingOrgs(ctx, g.ID)
	if err != nil {
		return err
	}
	e := event.LevelUp{GameID: g.ID, Team: t, LevelNumber: levelNumber, NewLevel: lvl, At: at, Orgs: orgs}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("game_id", g.ID).Str("team_id", t.ID).Msg("notifying level up")
	}
	return nil
}

// finishTeam tells the team it is done and, if it was the last one, finishes
// the game. Only the caller that flips the game status sends the final notices.
func (s *Service) finishTeam(ctx context.Context, g *game.Game, t team.Team) error {
	if err := s.view.GameFinished(ctx, g.ID, t); err != nil {
		return fmt.Errorf("sending team finish: %w", err)
	}
	if err := s.log.Log(ctx, g.ID, activity.TypeTeamFinished, fmt.Sprintf("Team %s finished", t.Name)); err != nil {
		return fmt.Errorf("writing game log: %w", err)
	}

	finished := false
	err := s.locks.WithGlobalLock(ctx, func(ctx context.Context) error {
		cur, err := s.games.Get(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("loading game: %w", err)
		}
		if cur.Status != game.StatusStarted {
			return nil
		}
		all, err := s.progress.IsAllTeamsFinished(ctx, g.ID, g.LevelsCount())
		if err != nil {
			return fmt.Errorf("checking all teams finished: %w", err)
		}
		if !all {
			return nil
		}
		if err := s.tx.InTx(ctx, func(ctx context.Context) error {
			return s.games.SetStatus(ctx, g.ID, game.StatusFinished)
		}); err != nil {
			return fmt.Errorf("finishing game: %w", err)
		}
		finished = true
		return nil
	})
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}
	return s.finishGame(ctx, g)
}

func (s *Service) finishGame(ctx context.Context, g *game.Game) error {
	if err := s.log.Log(ctx, g.ID, activity.TypeGameFinished, "Game finished"); err != nil {
		return fmt.Errorf("writing game log: %w", err)
	}
	s.locks.ClearAll()

	teams, err := s.teams.PlayedTeams(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("loading played teams: %w", err)
	}
	for _, t := range teams {
		if err := s.view.GameFinishedByAll(ctx, g.ID, t); err != nil {
			return fmt.Errorf("sending game finish to team %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *Service) spyingOrgs(ctx context.Context, gameID string) ([]team.Organizer, error) {
	orgs, err := s.teams.ListOrganizers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("loading organizers: %w", err)
	}
	var spies []team.Organizer
	for _, o := range orgs {
		if o.CanSpy {
			spies = append(spies, o)
		}
	}
	return spies, nil
}
