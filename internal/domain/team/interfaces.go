package team

import "context"

// Repository provides persistence for teams and players.
type Repository interface {
	CreateTeam(ctx context.Context, t *Team) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)
	CreatePlayer(ctx context.Context, p *Player) error
	GetPlayer(ctx context.Context, id string) (*Player, error)
	SetPlayerTeam(ctx context.Context, playerID string, teamID *string) error
}
