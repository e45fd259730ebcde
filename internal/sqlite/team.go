package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ganot/questline/internal/domain/team"
	"github.com/ganot/questline/internal/repository"
)

// TeamRepository implements team.Repository and the game roster for SQLite
type TeamRepository struct {
	db *DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// CreateTeam creates a new team
func (r *TeamRepository) CreateTeam(ctx context.Context, t *team.Team) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO teams (id, name, chat_id, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, nullString(t.ChatID), t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

// GetTeam retrieves a team by ID
func (r *TeamRepository) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, chat_id, created_at FROM teams WHERE id = ?
	`, id)
	t, err := scanTeam(row)
	if isNoRows(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// ListTeams returns all teams ordered by name
func (r *TeamRepository) ListTeams(ctx context.Context) ([]team.Team, error) {
	return r.listTeams(ctx, `SELECT id, name, chat_id, created_at FROM teams ORDER BY name ASC`)
}

// PlayedTeams returns the teams with at least one player who agreed to play the game
func (r *TeamRepository) PlayedTeams(ctx context.Context, gameID string) ([]team.Team, error) {
	return r.listTeams(ctx, `
		SELECT DISTINCT t.id, t.name, t.chat_id, t.created_at
		FROM teams t
		JOIN waivers w ON w.team_id = t.id
		WHERE w.game_id = ? AND w.vote = ?
		ORDER BY t.name ASC
	`, gameID, team.VoteYes)
}

func (r *TeamRepository) listTeams(ctx context.Context, query string, args ...any) ([]team.Team, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []team.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func scanTeam(s scanner) (*team.Team, error) {
	var t team.Team
	var chatID sql.NullString
	if err := s.Scan(&t.ID, &t.Name, &chatID, &t.CreatedAt); err != nil {
		return nil, err
	}
	if chatID.Valid {
		t.ChatID = &chatID.String
	}
	return &t, nil
}

// CreatePlayer creates a new player
func (r *TeamRepository) CreatePlayer(ctx context.Context, p *team.Player) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO players (id, name, team_id, created_at)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, nullString(p.TeamID), p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player by ID
func (r *TeamRepository) GetPlayer(ctx context.Context, id string) (*team.Player, error) {
	var p team.Player
	var teamID sql.NullString
	err := r.db.conn(ctx).QueryRowContext(ctx, `
		SELECT id, name, team_id, created_at FROM players WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &teamID, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if teamID.Valid {
		p.TeamID = &teamID.String
	}
	return &p, nil
}

// SetPlayerTeam moves a player into a team, or out of any team when teamID is nil
func (r *TeamRepository) SetPlayerTeam(ctx context.Context, playerID string, teamID *string) error {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE players SET team_id = ? WHERE id = ?`, nullString(teamID), playerID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to update player: %w", err)
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

// UpsertWaiver records a player's vote, replacing an earlier one
func (r *TeamRepository) UpsertWaiver(ctx context.Context, w team.Waiver) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO waivers (game_id, team_id, player_id, vote)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, player_id) DO UPDATE SET team_id = excluded.team_id, vote = excluded.vote
	`, w.GameID, w.TeamID, w.PlayerID, w.Vote)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to save waiver: %w", err)
	}
	return nil
}

// AddOrganizer adds an organizer to a game
func (r *TeamRepository) AddOrganizer(ctx context.Context, org *team.Organizer) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO organizers (id, game_id, player_id, can_spy)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.GameID, org.PlayerID, org.CanSpy)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to add organizer: %w", err)
	}
	return nil
}

// ListOrganizers returns the organizers of a game with their player names
func (r *TeamRepository) ListOrganizers(ctx context.Context, gameID string) ([]team.Organizer, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT o.id, o.game_id, o.player_id, p.name, o.can_spy
		FROM organizers o
		JOIN players p ON p.id = o.player_id
		WHERE o.game_id = ?
		ORDER BY p.name ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizers: %w", err)
	}
	defer rows.Close()

	var orgs []team.Organizer
	for rows.Next() {
		var o team.Organizer
		if err := rows.Scan(&o.ID, &o.GameID, &o.PlayerID, &o.Name, &o.CanSpy); err != nil {
			return nil, fmt.Errorf("failed to scan organizer: %w", err)
		}
		orgs = append(orgs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizer rows: %w", err)
	}
	return orgs, nil
}
