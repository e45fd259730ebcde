package sqlite

import (
	"context"
	"fmt"

	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/repository"
)

// LevelTestRepository implements leveltest.Repository for SQLite
type LevelTestRepository struct {
	db *DB
}

// NewLevelTestRepository creates a new LevelTestRepository
func NewLevelTestRepository(db *DB) *LevelTestRepository {
	return &LevelTestRepository{db: db}
}

// Start saves a new run of the suite, replacing the previous one and its keys
func (r *LevelTestRepository) Start(ctx context.Context, run *leveltest.Run) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		if err := r.deleteKeys(ctx, run.Suite); err != nil {
			return err
		}
		_, err := r.db.conn(ctx).ExecContext(ctx, `
			INSERT INTO level_tests (game_id, level_id, tester_id, started_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (game_id, level_id, tester_id) DO UPDATE SET started_at = excluded.started_at
		`, run.GameID, run.LevelID, run.TesterID, run.StartedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return repository.ErrForeignKeyViolation
			}
			return fmt.Errorf("failed to start level test: %w", err)
		}
		return nil
	})
}

// Get returns the running test of the suite
func (r *LevelTestRepository) Get(ctx context.Context, s leveltest.Suite) (*leveltest.Run, error) {
	run := &leveltest.Run{Suite: s}
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT started_at FROM level_tests
		WHERE game_id = ? AND level_id = ? AND tester_id = ?
	`, s.GameID, s.LevelID, s.TesterID).Scan(&run.StartedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get level test: %w", err)
	}
	return run, nil
}

// SaveKey appends a key to the test's key log
func (r *LevelTestRepository) SaveKey(ctx context.Context, key *leveltest.KeyTime) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO level_test_keys (game_id, level_id, tester_id, text, result, entered_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key.GameID, key.LevelID, key.TesterID, key.Text, key.Result, key.EnteredAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to save test key: %w", err)
	}
	return nil
}

// CorrectKeys returns the distinct correct keys typed in the test
func (r *LevelTestRepository) CorrectKeys(ctx context.Context, s leveltest.Suite) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT DISTINCT text FROM level_test_keys
		WHERE game_id = ? AND level_id = ? AND tester_id = ? AND result = ?
		ORDER BY text ASC
	`, s.GameID, s.LevelID, s.TesterID, gameplay.ResultCorrect)
	if err != nil {
		return nil, fmt.Errorf("failed to list test keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan test key: %w", err)
		}
		keys = append(keys, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test key rows: %w", err)
	}
	return keys, nil
}

// Delete drops the test and its keys
func (r *LevelTestRepository) Delete(ctx context.Context, s leveltest.Suite) error {
	return r.db.InTx(ctx, func(ctx context.Context) error {
		if err := r.deleteKeys(ctx, s); err != nil {
			return err
		}
		_, err := r.db.conn(ctx).ExecContext(ctx, `
			DELETE FROM level_tests WHERE game_id = ? AND level_id = ? AND tester_id = ?
		`, s.GameID, s.LevelID, s.TesterID)
		if err != nil {
			return fmt.Errorf("failed to delete level test: %w", err)
		}
		return nil
	})
}

func (r *LevelTestRepository) deleteKeys(ctx context.Context, s leveltest.Suite) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		DELETE FROM level_test_keys WHERE game_id = ? AND level_id = ? AND tester_id = ?
	`, s.GameID, s.LevelID, s.TesterID)
	if err != nil {
		return fmt.Errorf("failed to delete test keys: %w", err)
	}
	return nil
}
