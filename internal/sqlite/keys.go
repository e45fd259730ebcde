package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/repository"
)

// KeyRepository implements gameplay.KeyRepository for SQLite
type KeyRepository struct {
	db *DB
}

// NewKeyRepository creates a new KeyRepository
func NewKeyRepository(db *DB) *KeyRepository {
	return &KeyRepository{db: db}
}

// SaveKey appends a key to the key log
func (r *KeyRepository) SaveKey(ctx context.Context, key *gameplay.KeyTime) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO key_times (game_id, team_id, player_id, level_number, text, result, entered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key.GameID, key.TeamID, key.PlayerID, key.LevelNumber, key.Text, key.Result, key.EnteredAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to save key: %w", err)
	}
	id, err := result.LastInsertId()
	if err == nil {
		key.ID = id
	}
	return nil
}

// IsKeyDuplicate reports whether the team already typed text as a correct key on the level
func (r *KeyRepository) IsKeyDuplicate(ctx context.Context, gameID, teamID string, levelNumber int, text string) (bool, error) {
	var exists bool
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM key_times
			WHERE game_id = ? AND team_id = ? AND level_number = ? AND text = ? AND result = ?
		)
	`, gameID, teamID, levelNumber, text, gameplay.ResultCorrect).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate key: %w", err)
	}
	return exists, nil
}

// CorrectTypedKeys returns the distinct correct keys typed by the team on the level
func (r *KeyRepository) CorrectTypedKeys(ctx context.Context, gameID, teamID string, levelNumber int) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT DISTINCT text FROM key_times
		WHERE game_id = ? AND team_id = ? AND level_number = ? AND result = ?
		ORDER BY text ASC
	`, gameID, teamID, levelNumber, gameplay.ResultCorrect)
	if err != nil {
		return nil, fmt.Errorf("failed to list typed keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}
	return keys, nil
}

// ListKeys returns every key the team submitted, oldest first
func (r *KeyRepository) ListKeys(ctx context.Context, gameID, teamID string) ([]gameplay.KeyTime, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT id, game_id, team_id, player_id, level_number, text, result, entered_at
		FROM key_times
		WHERE game_id = ? AND team_id = ?
		ORDER BY id ASC
	`, gameID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []gameplay.KeyTime
	for rows.Next() {
		var k gameplay.KeyTime
		if err := rows.Scan(&k.ID, &k.GameID, &k.TeamID, &k.PlayerID, &k.LevelNumber, &k.Text, &k.Result, &k.EnteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}
	return keys, nil
}
