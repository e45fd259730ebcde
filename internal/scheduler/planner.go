package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Planner turns domain scheduling requests into stored jobs.
type Planner struct {
	store  Store
	logger zerolog.Logger
}

// NewPlanner creates a Planner over store.
func NewPlanner(store Store, logger zerolog.Logger) *Planner {
	return &Planner{store: store, logger: logger}
}

// PlanHint schedules delivery of ref at the given time.
func (p *Planner) PlanHint(ctx context.Context, at time.Time, ref gameplay.HintRef) error {
	return p.plan(ctx, KindHint, at, ref)
}

// PlanTestHint schedules a level test hint.
func (p *Planner) PlanTestHint(ctx context.Context, at time.Time, ref leveltest.HintRef) error {
	return p.plan(ctx, KindTestHint, at, ref)
}

// PlanPrepare schedules the pre-start briefing of a game.
func (p *Planner) PlanPrepare(ctx context.Context, gameID string, at time.Time) error {
	return p.plan(ctx, KindPrepare, at, gamePayload{GameID: gameID})
}

// PlanStart schedules the start of a game.
func (p *Planner) PlanStart(ctx context.Context, gameID string, at time.Time) error {
	return p.plan(ctx, KindStart, at, gamePayload{GameID: gameID})
}

func (p *Planner) plan(ctx context.Context, kind Kind, at time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", kind, err)
	}
	job := Job{ID: uuid.NewString(), Kind: kind, RunAt: at, Payload: data}
	if err := p.store.Add(ctx, job); err != nil {
		return err
	}
	p.logger.Debug().Str("job_id", job.ID).Str("kind", string(kind)).Time("run_at", at).Msg("job planned")
	return nil
}
