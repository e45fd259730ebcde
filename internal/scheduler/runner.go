package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// HintSender delivers a planned hint.
type HintSender interface {
	SendHint(ctx context.Context, ref gameplay.HintRef) error
}

// TestHintSender delivers a planned level test hint.
type TestHintSender interface {
	SendTestHint(ctx context.Context, ref leveltest.HintRef) error
}

// GameRunner handles the lifecycle wake-ups of a game.
type GameRunner interface {
	Prepare(ctx context.Context, gameID string) error
	Start(ctx context.Context, gameID string) error
}

// Config tunes the runner.
type Config struct {
	PollInterval time.Duration
	Workers      int
	BatchSize    int
	MaxAttempts  int
	RetryDelay   time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
	return c
}

// Runner polls the store and fires due jobs on a worker pool.
type Runner struct {
	store  Store
	hints  HintSender
	tests  TestHintSender
	games  GameRunner
	clock  clockwork.Clock
	cfg    Config
	logger zerolog.Logger
}

// NewRunner creates a Runner.
func NewRunner(store Store, hints HintSender, tests TestHintSender, games GameRunner, clock clockwork.Clock, cfg Config, logger zerolog.Logger) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		store:  store,
		hints:  hints,
		tests:  tests,
		games:  games,
		clock:  clock,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Run polls until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Int("workers", r.cfg.Workers).
		Msg("scheduler started")

	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.Chan():
			if _, err := r.RunDue(ctx); err != nil {
				r.logger.Error().Err(err).Msg("running due jobs")
			}
		}
	}
}

// RunDue claims every due job and runs it, returning how many were claimed.
// It returns once all claimed jobs have been handled. Jobs claimed before a
// store error are still run.
func (r *Runner) RunDue(ctx context.Context) (int, error) {
	jobs, err := r.store.ClaimDue(ctx, r.clock.Now(), r.cfg.BatchSize)
	if err != nil {
		err = fmt.Errorf("claiming due jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, err
	}

	workCh := make(chan Job)
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers && i < len(jobs); i++ {
		wg.Add(1)
		go r.worker(ctx, &wg, workCh)
	}
	for _, job := range jobs {
		workCh <- job
	}
	close(workCh)
	wg.Wait()

	return len(jobs), err
}

func (r *Runner) worker(ctx context.Context, wg *sync.WaitGroup, workCh <-chan Job) {
	defer wg.Done()
	for job := range workCh {
		r.handle(ctx, job)
	}
}

func (r *Runner) handle(ctx context.Context, job Job) {
	err := r.execute(ctx, job)
	if err == nil {
		r.ack(ctx, job)
		return
	}

	job.Attempt++
	logger := r.logger.With().Str("job_id", job.ID).Str("kind", string(job.Kind)).Int("attempt", job.Attempt).Logger()
	if job.Attempt >= r.cfg.MaxAttempts {
		logger.Error().Err(err).Msg("job failed, giving up")
		r.ack(ctx, job)
		return
	}
	job.RunAt = r.clock.Now().Add(r.cfg.RetryDelay)
	if addErr := r.store.Add(ctx, job); addErr != nil {
		logger.Error().Err(addErr).Msg("rescheduling failed job")
		return
	}
	logger.Warn().Err(err).Time("retry_at", job.RunAt).Msg("job failed, retrying")
}

// ack releases a finished job. On failure the lease runs out and the job is
// claimed again; handlers re-validate on every fire.
func (r *Runner) ack(ctx context.Context, job Job) {
	if err := r.store.Ack(ctx, job.ID); err != nil {
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("acking job")
	}
}

func (r *Runner) execute(ctx context.Context, job Job) error {
	switch job.Kind {
	case KindHint:
		ref, err := job.hintRef()
		if err != nil {
			return err
		}
		return r.hints.SendHint(ctx, ref)
	case KindTestHint:
		ref, err := job.testHintRef()
		if err != nil {
			return err
		}
		return r.tests.SendTestHint(ctx, ref)
	case KindPrepare:
		gameID, err := job.gameID()
		if err != nil {
			return err
		}
		return r.games.Prepare(ctx, gameID)
	case KindStart:
		gameID, err := job.gameID()
		if err != nil {
			return err
		}
		return r.games.Start(ctx, gameID)
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}
