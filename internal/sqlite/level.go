package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/repository"
	"github.com/google/uuid"
)

// LevelRepository implements game.LevelRepository for SQLite
type LevelRepository struct {
	db *DB
}

// NewLevelRepository creates a new LevelRepository
func NewLevelRepository(db *DB) *LevelRepository {
	return &LevelRepository{db: db}
}

// Upsert stores the level scenario under (author, name id). An existing level
// keeps its ID; a level attached to a running game can not be replaced.
func (r *LevelRepository) Upsert(ctx context.Context, lvl *level.Level) error {
	scenario, err := json.Marshal(lvl.Scenario)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	q := r.db.conn(ctx)

	var id string
	var status sql.NullString
	err = q.QueryRowContext(ctx, `
		SELECT l.id, g.status
		FROM levels l
		LEFT JOIN games g ON g.id = l.game_id
		WHERE l.author_id = ? AND l.name_id = ?
	`, lvl.AuthorID, lvl.NameID).Scan(&id, &status)

	switch {
	case err == sql.ErrNoRows:
		if lvl.ID == "" {
			lvl.ID = uuid.NewString()
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO levels (id, name_id, author_id, scenario)
			VALUES (?, ?, ?, ?)
		`, lvl.ID, lvl.NameID, lvl.AuthorID, string(scenario))
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrConflict
			}
			return fmt.Errorf("failed to create level: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to get level: %w", err)
	}

	if status.Valid && game.Status(status.String).IsActive() {
		return repository.ErrConflict
	}

	_, err = q.ExecContext(ctx, `UPDATE levels SET scenario = ? WHERE id = ?`, string(scenario), id)
	if err != nil {
		return fmt.Errorf("failed to update level: %w", err)
	}
	lvl.ID = id
	return nil
}

// Get retrieves a level by ID
func (r *LevelRepository) Get(ctx context.Context, id string) (*level.Level, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name_id, author_id, game_id, number_in_game, scenario
		FROM levels
		WHERE id = ?
	`, id)
	lvl, err := scanLevel(row)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return lvl, nil
}

// AttachToGame makes levelIDs the ordered levels of the game, detaching the
// levels it had before.
func (r *LevelRepository) AttachToGame(ctx context.Context, gameID string, levelIDs []string) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		q := r.db.conn(ctx)
		if _, err := q.ExecContext(ctx,
			`UPDATE levels SET game_id = NULL, number_in_game = NULL WHERE game_id = ?`, gameID); err != nil {
			return fmt.Errorf("failed to detach levels: %w", err)
		}
		for i, id := range levelIDs {
			result, err := q.ExecContext(ctx,
				`UPDATE levels SET game_id = ?, number_in_game = ? WHERE id = ?`, gameID, i, id)
			if err != nil {
				if isForeignKeyViolation(err) {
					return repository.ErrForeignKeyViolation
				}
				if isUniqueViolation(err) {
					return repository.ErrConflict
				}
				return fmt.Errorf("failed to attach level: %w", err)
			}
			if n, err := result.RowsAffected(); err == nil && n == 0 {
				return repository.ErrNotFound
			}
		}
		return nil
	})
}
