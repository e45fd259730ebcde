// Package scheduler persists delayed work (hint deliveries, game prepare and
// start wake-ups) and runs it when it comes due.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/leveltest"
)

// Kind identifies what a job does when it fires.
type Kind string

const (
	KindHint     Kind = "hint"
	KindTestHint Kind = "test_hint"
	KindPrepare  Kind = "prepare"
	KindStart    Kind = "start"
)

// Job is one planned wake-up.
type Job struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	RunAt   time.Time       `json:"run_at"`
	Attempt int             `json:"attempt"`
	Payload json.RawMessage `json:"payload"`
}

// Store keeps jobs until they are due. A job returned by ClaimDue is handed to
// one caller at a time and stays owned by it until Ack, or until Add
// reschedules it. ClaimDue may return claimed jobs together with an error.
type Store interface {
	Add(ctx context.Context, job Job) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]Job, error)
	Ack(ctx context.Context, jobID string) error
}

type gamePayload struct {
	GameID string `json:"game_id"`
}

func (j Job) hintRef() (gameplay.HintRef, error) {
	var ref gameplay.HintRef
	if err := json.Unmarshal(j.Payload, &ref); err != nil {
		return ref, fmt.Errorf("decoding hint payload of job %s: %w", j.ID, err)
	}
	return ref, nil
}

func (j Job) testHintRef() (leveltest.HintRef, error) {
	var ref leveltest.HintRef
	if err := json.Unmarshal(j.Payload, &ref); err != nil {
		return ref, fmt.Errorf("decoding test hint payload of job %s: %w", j.ID, err)
	}
	return ref, nil
}

func (j Job) gameID() (string, error) {
	var p gamePayload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return "", fmt.Errorf("decoding game payload of job %s: %w", j.ID, err)
	}
	if p.GameID == "" {
		return "", fmt.Errorf("job %s has no game id", j.ID)
	}
	return p.GameID, nil
}
