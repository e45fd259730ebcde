package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
)

// ProgressRepository stores level times for SQLite. The unique
// (game, team, level) key makes every level transition happen once.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// SetTeamsToFirstLevel places every team on level zero and marks its kickoff pending
func (r *ProgressRepository) SetTeamsToFirstLevel(ctx context.Context, gameID string, teamIDs []string, at time.Time) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		for _, teamID := range teamIDs {
			if err := r.insert(ctx, &gameplay.LevelTime{GameID: gameID, TeamID: teamID, StartAt: at}); err != nil {
				return err
			}
			_, err := r.db.conn(ctx).ExecContext(ctx, `
				INSERT INTO kickoffs (game_id, team_id) VALUES (?, ?)
				ON CONFLICT (game_id, team_id) DO NOTHING
			`, gameID, teamID)
			if err != nil {
				return fmt.Errorf("failed to save kickoff: %w", err)
			}
		}
		return nil
	})
}

// PendingKickoffs returns the teams still waiting for the first puzzle,
// skipping those already past level zero
func (r *ProgressRepository) PendingKickoffs(ctx context.Context, gameID string) ([]game.Kickoff, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT k.team_id, lt.start_at
		FROM kickoffs k
		JOIN level_times lt ON lt.game_id = k.game_id AND lt.team_id = k.team_id AND lt.level_number = 0
		WHERE k.game_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM level_times n
			WHERE n.game_id = k.game_id AND n.team_id = k.team_id AND n.level_number > 0
		  )
		ORDER BY k.team_id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list kickoffs: %w", err)
	}
	defer rows.Close()

	var kickoffs []game.Kickoff
	for rows.Next() {
		var k game.Kickoff
		if err := rows.Scan(&k.TeamID, &k.LevelStartAt); err != nil {
			return nil, fmt.Errorf("failed to scan kickoff: %w", err)
		}
		kickoffs = append(kickoffs, k)
	}
	return kickoffs, rows.Err()
}

// ClearKickoff marks the team's kickoff done
func (r *ProgressRepository) ClearKickoff(ctx context.Context, gameID, teamID string) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `DELETE FROM kickoffs WHERE game_id = ? AND team_id = ?`, gameID, teamID)
	if err != nil {
		return fmt.Errorf("failed to clear kickoff: %w", err)
	}
	return nil
}

// CurrentLevel returns the latest level time of the team
func (r *ProgressRepository) CurrentLevel(ctx context.Context, gameID, teamID string) (*gameplay.LevelTime, error) {
	var lt gameplay.LevelTime
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, game_id, team_id, level_number, start_at
		FROM level_times
		WHERE game_id = ? AND team_id = ?
		ORDER BY level_number DESC
		LIMIT 1
	`, gameID, teamID).Scan(&lt.ID, &lt.GameID, &lt.TeamID, &lt.LevelNumber, &lt.StartAt)
	if isNoRows(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current level: %w", err)
	}
	return &lt, nil
}

// LevelUp records that the team reached lt.LevelNumber. A second transition
// to the same level fails with repository.ErrConflict.
func (r *ProgressRepository) LevelUp(ctx context.Context, lt *gameplay.LevelTime) error {
	return r.insert(ctx, lt)
}

func (r *ProgressRepository) insert(ctx context.Context, lt *gameplay.LevelTime) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO level_times (game_id, team_id, level_number, start_at)
		VALUES (?, ?, ?, ?)
	`, lt.GameID, lt.TeamID, lt.LevelNumber, lt.StartAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to save level time: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		lt.ID = id
	}
	return nil
}

// IsAllTeamsFinished reports whether every played team reached levelsCount
func (r *ProgressRepository) IsAllTeamsFinished(ctx context.Context, gameID string, levelsCount int) (bool, error) {
	var playing int
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM (SELECT DISTINCT team_id FROM waivers WHERE game_id = ? AND vote = ?) p
		WHERE COALESCE(
			(SELECT MAX(lt.level_number) FROM level_times lt WHERE lt.game_id = ? AND lt.team_id = p.team_id),
			-1
		) < ?
	`, gameID, team.VoteYes, gameID, levelsCount).Scan(&playing)
	if err != nil {
		return false, fmt.Errorf("failed to count playing teams: %w", err)
	}
	return playing == 0, nil
}
