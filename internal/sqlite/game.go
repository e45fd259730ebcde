package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/repository"
)

// GameRepository implements game.Repository for SQLite
type GameRepository struct {
	db *DB
}

// NewGameRepository creates a new GameRepository
func NewGameRepository(db *DB) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, author_id, name, status, start_at, created_at`

// Create creates a new game
func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	query := `
		INSERT INTO games (id, author_id, name, status, start_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		g.ID,
		g.AuthorID,
		g.Name,
		g.Status,
		nullTime(g.StartAt),
		g.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// Get retrieves a game by ID together with its ordered levels
func (r *GameRepository) Get(ctx context.Context, id string) (*game.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetByName retrieves a game by its unique name
func (r *GameRepository) GetByName(ctx context.Context, name string) (*game.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE name = ?`
	return r.getOne(ctx, query, name)
}

// GetActive retrieves the game in an active status, if any
func (r *GameRepository) GetActive(ctx context.Context) (*game.Game, error) {
	placeholders := make([]string, len(game.ActiveStatuses))
	args := make([]any, len(game.ActiveStatuses))
	for i, s := range game.ActiveStatuses {
		placeholders[i] = "?"
		args[i] = s
	}
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE status IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at ASC
		LIMIT 1`
	return r.getOne(ctx, query, args...)
}

// SetStatus updates the game status
func (r *GameRepository) SetStatus(ctx context.Context, id string, status game.Status) error {
	return r.update(ctx, `UPDATE games SET status = ? WHERE id = ?`, status, id)
}

// SetStartAt updates the planned start time
func (r *GameRepository) SetStartAt(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, `UPDATE games SET start_at = ? WHERE id = ?`, at, id)
}

func (r *GameRepository) update(ctx context.Context, query string, args ...any) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *GameRepository) getOne(ctx context.Context, query string, args ...any) (*game.Game, error) {
	var g game.Game
	var startAt sql.NullTime
	err := r.db.conn(ctx).QueryRowContext(ctx, query, args...).Scan(
		&g.ID,
		&g.AuthorID,
		&g.Name,
		&g.Status,
		&startAt,
		&g.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if startAt.Valid {
		g.StartAt = &startAt.Time
	}

	levels, err := listGameLevels(ctx, r.db.conn(ctx), g.ID)
	if err != nil {
		return nil, err
	}
	g.Levels = levels

	return &g, nil
}

func listGameLevels(ctx context.Context, q querier, gameID string) ([]level.Level, error) {
	query := `
		SELECT id, name_id, author_id, game_id, number_in_game, scenario
		FROM levels
		WHERE game_id = ?
		ORDER BY number_in_game ASC
	`

	rows, err := q.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	defer rows.Close()

	var levels []level.Level
	for rows.Next() {
		lvl, err := scanLevel(rows)
		if err != nil {
			return nil, err
		}
		levels = append(levels, *lvl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating level rows: %w", err)
	}

	return levels, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLevel(s scanner) (*level.Level, error) {
	var lvl level.Level
	var gameID sql.NullString
	var number sql.NullInt64
	var scenario string
	if err := s.Scan(&lvl.ID, &lvl.NameID, &lvl.AuthorID, &gameID, &number, &scenario); err != nil {
		return nil, fmt.Errorf("failed to scan level: %w", err)
	}
	if gameID.Valid {
		lvl.GameID = &gameID.String
	}
	if number.Valid {
		n := int(number.Int64)
		lvl.NumberInGame = &n
	}
	if err := json.Unmarshal([]byte(scenario), &lvl.Scenario); err != nil {
		return nil, fmt.Errorf("failed to decode scenario of level %s: %w", lvl.ID, err)
	}
	return &lvl, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
