package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/questline/internal/domain/activity"
	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Deps holds the collaborators of the game service.
type Deps struct {
	Tx        Transactor
	Games     Repository
	Levels    LevelRepository
	Roster    RosterRepository
	Progress  ProgressRepository
	Members   MemberChecker
	View      View
	Hints     HintPlanner
	Scheduler Scheduler
	Notifier  Notifier
	Log       GameLog
	Clock     clockwork.Clock
	Logger    zerolog.Logger
}

// Service drives the game lifecycle.
type Service struct {
	tx        Transactor
	games     Repository
	levels    LevelRepository
	roster    RosterRepository
	progress  ProgressRepository
	members   MemberChecker
	view      View
	hints     HintPlanner
	scheduler Scheduler
	notifier  Notifier
	log       GameLog
	clock     clockwork.Clock
	logger    zerolog.Logger
}

// NewService creates a new game service.
func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		tx:        d.Tx,
		games:     d.Games,
		levels:    d.Levels,
		roster:    d.Roster,
		progress:  d.Progress,
		members:   d.Members,
		view:      d.View,
		hints:     d.Hints,
		scheduler: d.Scheduler,
		notifier:  d.Notifier,
		log:       d.Log,
		clock:     clock,
		logger:    d.Logger,
	}
}

// Get returns a game with its levels.
func (s *Service) Get(ctx context.Context, id string) (*Game, error) {
	return s.load(ctx, id)
}

// Active returns the game currently holding an active status.
func (s *Service) Active(ctx context.Context) (*Game, error) {
	g, err := s.games.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("loading active game: %w", err)
	}
	return g, nil
}

// Upsert creates a game from a scenario, or replaces the levels of the author's
// existing game with the same name.
func (s *Service) Upsert(ctx context.Context, authorID string, scn Scenario) (*Game, error) {
	name := strings.TrimSpace(scn.Name)
	if name == "" || authorID == "" {
		return nil, ErrInvalidInput
	}
	if len(scn.Levels) == 0 {
		return nil, ErrNoLevels
	}
	seen := make(map[string]struct{}, len(scn.Levels))
	for i := range scn.Levels {
		scn.Levels[i].Normalize()
		if err := scn.Levels[i].Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[scn.Levels[i].ID]; dup {
			return nil, fmt.Errorf("%w: level %s used twice", level.ErrInvalidScenario, scn.Levels[i].ID)
		}
		seen[scn.Levels[i].ID] = struct{}{}
	}

	existing, err := s.games.GetByName(ctx, name)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading game: %w", err)
	}
	if existing != nil {
		if !existing.IsAuthor(authorID) {
			return nil, ErrNotAuthorizedForEdit
		}
		if existing.Status.IsActive() || existing.Status.IsTerminal() {
			return nil, ErrCantEditGame
		}
	}

	var gameID string
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if existing == nil {
			g := &Game{
				ID:        uuid.NewString(),
				AuthorID:  authorID,
				Name:      name,
				Status:    StatusUnderConstruction,
				CreatedAt: s.clock.Now(),
			}
			if err := s.games.Create(ctx, g); err != nil {
				return fmt.Errorf("creating game: %w", err)
			}
			gameID = g.ID
		} else {
			gameID = existing.ID
		}

		ids := make([]string, 0, len(scn.Levels))
		for _, ls := range scn.Levels {
			lvl := &level.Level{NameID: ls.ID, AuthorID: authorID, Scenario: ls}
			if err := s.levels.Upsert(ctx, lvl); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("%w: level %s belongs to a game in progress", ErrCantEditGame, ls.ID)
				}
				return fmt.Errorf("saving level %s: %w", ls.ID, err)
			}
			ids = append(ids, lvl.ID)
		}
		if err := s.levels.AttachToGame(ctx, gameID, ids); err != nil {
			return fmt.Errorf("attaching levels: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("game_id", gameID).Str("name", name).Int("levels", len(scn.Levels)).Msg("game saved")
	return s.load(ctx, gameID)
}

// StartWaivers opens waiver collection, which makes the game active.
func (s *Service) StartWaivers(ctx context.Context, gameID, authorID string) error {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if !g.IsAuthor(authorID) {
		return ErrNotAuthorizedForEdit
	}
	if g.Status != StatusUnderConstruction && g.Status != StatusReady {
		return ErrCantEditGame
	}
	if g.LevelsCount() == 0 {
		return ErrNoLevels
	}
	if err := s.checkNoOtherActive(ctx, g.ID); err != nil {
		return err
	}
	if err := s.games.SetStatus(ctx, g.ID, StatusGettingWaivers); err != nil {
		return fmt.Errorf("starting waivers: %w", err)
	}
	return s.appendLog(ctx, g.ID, activity.TypeWaiversStarted, "Waivers collection started")
}

// AddWaiver records a player's vote to play for their team.
func (s *Service) AddWaiver(ctx context.Context, w team.Waiver) error {
	if !w.Vote.Valid() {
		return ErrInvalidInput
	}
	g, err := s.load(ctx, w.GameID)
	if err != nil {
		return err
	}
	if g.Status != StatusGettingWaivers {
		return ErrWaiversNotOpen
	}
	if err := s.members.CheckMember(ctx, w.PlayerID, w.TeamID); err != nil {
		return err
	}
	if err := s.roster.UpsertWaiver(ctx, w); err != nil {
		return fmt.Errorf("saving waiver: %w", err)
	}
	return nil
}

// PlanStart sets the start time and schedules the prepare and start wake-ups.
func (s *Service) PlanStart(ctx context.Context, gameID, authorID string, startAt time.Time) error {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if !g.IsAuthor(authorID) {
		return ErrNotAuthorizedForEdit
	}
	if g.Status == StatusStarted || g.Status.IsTerminal() {
		return ErrCantEditGame
	}
	if g.Status != StatusGettingWaivers {
		return ErrWaiversNotOpen
	}
	if err := s.checkNoOtherActive(ctx, g.ID); err != nil {
		return err
	}

	if err := s.games.SetStartAt(ctx, g.ID, startAt); err != nil {
		return fmt.Errorf("setting start time: %w", err)
	}
	if err := s.scheduler.PlanPrepare(ctx, g.ID, startAt.Add(-PrepareLead)); err != nil {
		return fmt.Errorf("planning prepare: %w", err)
	}
	if err := s.scheduler.PlanStart(ctx, g.ID, startAt); err != nil {
		return fmt.Errorf("planning start: %w", err)
	}
	return s.appendLog(ctx, g.ID, activity.TypeStartPlanned, fmt.Sprintf("Game start planned at %s", startAt.UTC().Format(time.RFC3339)))
}

// Prepare pushes the pre-start briefing. A wake-up outside the prepare window is ignored.
func (s *Service) Prepare(ctx context.Context, gameID string) error {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if g.StartAt == nil || !ShouldPrepareNow(*g.StartAt, now) {
		s.logger.Warn().Str("game_id", g.ID).Time("now", now).Msg("prepare wake-up outside of window, skipped")
		return nil
	}

	teams, err := s.roster.PlayedTeams(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("loading played teams: %w", err)
	}
	orgs, err := s.roster.ListOrganizers(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("loading organizers: %w", err)
	}
	if err := s.view.PrepareGame(ctx, g, teams, orgs); err != nil {
		return fmt.Errorf("preparing game: %w", err)
	}
	return nil
}

// Start begins the game: every played team lands on the first level, gets its
// puzzle and has its first hint scheduled. A wake-up outside the start window,
// or for a game not taking waivers, is ignored. A wake-up for a started game
// resumes the teams whose kickoff failed.
func (s *Service) Start(ctx context.Context, gameID string) error {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	if g.StartAt == nil || !ShouldStartNow(*g.StartAt, now) {
		s.logger.Warn().Str("game_id", g.ID).Time("now", now).Msg("start wake-up outside of window, skipped")
		return nil
	}
	switch g.Status {
	case StatusStarted:
		return s.kickoff(ctx, g)
	case StatusGettingWaivers:
	default:
		s.logger.Warn().Str("game_id", g.ID).Str("status", string(g.Status)).Msg("game is not getting waivers, start skipped")
		return nil
	}
	if g.LevelsCount() == 0 {
		return ErrNoLevels
	}
	if err := s.checkNoOtherActive(ctx, g.ID); err != nil {
		return err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.games.SetStatus(ctx, g.ID, StatusStarted); err != nil {
			return fmt.Errorf("marking game started: %w", err)
		}
		played, err := s.roster.PlayedTeams(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("loading played teams: %w", err)
		}
		ids := make([]string, len(played))
		for i, t := range played {
			ids[i] = t.ID
		}
		if err := s.progress.SetTeamsToFirstLevel(ctx, g.ID, ids, now); err != nil {
			return fmt.Errorf("setting teams to first level: %w", err)
		}
		return s.appendLog(ctx, g.ID, activity.TypeGameStarted, "Game started")
	})
	if err != nil {
		return err
	}
	return s.kickoff(ctx, g)
}

// kickoff sends the first puzzle and plans the first hint for every pending
// team concurrently. A team is cleared only after both succeed.
func (s *Service) kickoff(ctx context.Context, g *Game) error {
	pending, err := s.progress.PendingKickoffs(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("loading pending kickoffs: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}
	if g.LevelsCount() == 0 {
		return ErrNoLevels
	}
	played, err := s.roster.PlayedTeams(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("loading played teams: %w", err)
	}
	byID := make(map[string]team.Team, len(played))
	for _, t := range played {
		byID[t.ID] = t
	}

	first := g.Levels[0]
	var eg errgroup.Group
	for _, k := range pending {
		t, ok := byID[k.TeamID]
		if !ok {
			t = team.Team{ID: k.TeamID}
		}
		eg.Go(func() error {
			if err := s.view.SendPuzzle(ctx, g.ID, t, first); err != nil {
				return fmt.Errorf("sending puzzle to team %s: %w", t.ID, err)
			}
			if err := s.hints.ScheduleFirstHint(ctx, g.ID, t, 0, first, k.LevelStartAt); err != nil {
				return fmt.Errorf("scheduling first hint for team %s: %w", t.ID, err)
			}
			if err := s.progress.ClearKickoff(ctx, g.ID, t.ID); err != nil {
				return fmt.Errorf("clearing kickoff of team %s: %w", t.ID, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("game_id", g.ID).Msg("kickoff incomplete, pending teams resume on retry")
		return err
	}
	return nil
}

// AddOrganizer adds an organizer to the game and tells the existing ones.
func (s *Service) AddOrganizer(ctx context.Context, gameID, authorID, playerID string, canSpy bool) (*team.Organizer, error) {
	if playerID == "" {
		return nil, ErrInvalidInput
	}
	g, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.IsAuthor(authorID) {
		return nil, ErrNotAuthorizedForEdit
	}
	if g.Status.IsTerminal() {
		return nil, ErrCantEditGame
	}

	existing, err := s.roster.ListOrganizers(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("loading organizers: %w", err)
	}
	org := &team.Organizer{
		ID:       uuid.NewString(),
		GameID:   g.ID,
		PlayerID: playerID,
		CanSpy:   canSpy,
	}
	if err := s.roster.AddOrganizer(ctx, org); err != nil {
		return nil, fmt.Errorf("adding organizer: %w", err)
	}

	if err := s.notifier.Notify(ctx, event.NewOrg{GameID: g.ID, Org: *org, Orgs: existing}); err != nil {
		s.logger.Error().Err(err).Str("game_id", g.ID).Msg("notifying organizers")
	}
	return org, nil
}

// Complete publishes the results of a finished game.
func (s *Service) Complete(ctx context.Context, gameID, authorID string) error {
	g, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if !g.IsAuthor(authorID) {
		return ErrNotAuthorizedForEdit
	}
	if g.Status != StatusFinished {
		return ErrCantEditGame
	}
	if err := s.games.SetStatus(ctx, g.ID, StatusComplete); err != nil {
		return fmt.Errorf("completing game: %w", err)
	}
	return s.appendLog(ctx, g.ID, activity.TypeGameCompleted, "Game completed")
}

func (s *Service) load(ctx context.Context, id string) (*Game, error) {
	g, err := s.games.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("loading game: %w", err)
	}
	return g, nil
}

func (s *Service) checkNoOtherActive(ctx context.Context, gameID string) error {
	active, err := s.games.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("loading active game: %w", err)
	}
	if active.ID != gameID {
		return fmt.Errorf("%w: %s (%s)", ErrAnotherGameIsActive, active.Name, active.Status)
	}
	return nil
}

func (s *Service) appendLog(ctx context.Context, gameID string, typ activity.Type, message string) error {
	if err := s.log.Log(ctx, gameID, typ, message); err != nil {
		return fmt.Errorf("writing game log: %w", err)
	}
	return nil
}
