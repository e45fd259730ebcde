// Package notify delivers team messages and organizer events over NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ganot/questline/internal/domain/event"
	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/gameplay"
	"github.com/ganot/questline/internal/domain/level"
	"github.com/ganot/questline/internal/domain/leveltest"
	"github.com/ganot/questline/internal/domain/team"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Message types carried in the envelope.
const (
	TypePrepare           = "prepare"
	TypePuzzle            = "puzzle"
	TypeHint              = "hint"
	TypeCorrectKey        = "correct_key"
	TypeWrongKey          = "wrong_key"
	TypeDuplicateKey      = "duplicate_key"
	TypeGameFinished      = "game_finished"
	TypeGameFinishedByAll = "game_finished_by_all"
	TypeTestPuzzle        = "test_puzzle"
	TypeTestHint          = "test_hint"
	TypeTestKey           = "test_key"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps every published message.
type Envelope struct {
	Type       string          `json:"type"`
	GameID     string          `json:"game_id,omitempty"`
	TeamID     string          `json:"team_id,omitempty"`
	Recipients []string        `json:"recipients,omitempty"`
	SentAt     time.Time       `json:"sent_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Publisher implements the game and gameplay views and the organizer notifier.
type Publisher struct {
	conn   Conn
	prefix string
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewPublisher creates a Publisher publishing under prefix.
func NewPublisher(conn Conn, prefix string, clock clockwork.Clock, logger zerolog.Logger) *Publisher {
	if prefix == "" {
		prefix = "questline"
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Publisher{conn: conn, prefix: prefix, clock: clock, logger: logger}
}

// TeamSubject is where messages for one team go.
func (p *Publisher) TeamSubject(teamID string) string {
	return fmt.Sprintf("%s.teams.%s", p.prefix, teamID)
}

// TesterSubject is where level test messages for one player go.
func (p *Publisher) TesterSubject(playerID string) string {
	return fmt.Sprintf("%s.testers.%s", p.prefix, playerID)
}

// OrgSubject is where organizer events of one kind go.
func (p *Publisher) OrgSubject(kind event.Kind) string {
	return fmt.Sprintf("%s.orgs.%s", p.prefix, kind)
}

// PrepareSubject is where the pre-start briefing of a game goes.
func (p *Publisher) PrepareSubject(gameID string) string {
	return fmt.Sprintf("%s.games.%s.prepare", p.prefix, gameID)
}

type preparePayload struct {
	Game   *game.Game       `json:"game"`
	Teams  []team.Team      `json:"teams"`
	Orgs   []team.Organizer `json:"orgs"`
	Levels int              `json:"levels"`
}

type puzzlePayload struct {
	LevelID  string         `json:"level_id"`
	NameID   string         `json:"name_id"`
	Puzzle   level.TimeHint `json:"puzzle"`
	Hints    int            `json:"hints"`
	KeyCount int            `json:"key_count"`
}

type hintPayload struct {
	LevelID    string         `json:"level_id"`
	HintNumber int            `json:"hint_number"`
	Hint       level.TimeHint `json:"hint"`
	Last       bool           `json:"last"`
}

type teamPayload struct {
	Team team.Team `json:"team"`
}

func (p *Publisher) PrepareGame(_ context.Context, g *game.Game, teams []team.Team, orgs []team.Organizer) error {
	payload := preparePayload{Game: g, Teams: teams, Orgs: orgs, Levels: g.LevelsCount()}
	return p.publish(p.PrepareSubject(g.ID), Envelope{Type: TypePrepare, GameID: g.ID}, payload)
}

func (p *Publisher) SendPuzzle(_ context.Context, gameID string, t team.Team, lvl level.Level) error {
	payload, err := newPuzzlePayload(lvl)
	if err != nil {
		return err
	}
	return p.publish(p.TeamSubject(t.ID), Envelope{Type: TypePuzzle, GameID: gameID, TeamID: t.ID}, payload)
}

func (p *Publisher) SendHint(_ context.Context, gameID string, t team.Team, hintNumber int, lvl level.Level) error {
	payload, err := newHintPayload(lvl, hintNumber)
	if err != nil {
		return err
	}
	return p.publish(p.TeamSubject(t.ID), Envelope{Type: TypeHint, GameID: gameID, TeamID: t.ID}, payload)
}

func newPuzzlePayload(lvl level.Level) (puzzlePayload, error) {
	puzzle, ok := lvl.Hint(0)
	if !ok {
		return puzzlePayload{}, fmt.Errorf("level %s has no puzzle", lvl.ID)
	}
	return puzzlePayload{
		LevelID:  lvl.ID,
		NameID:   lvl.NameID,
		Puzzle:   puzzle,
		Hints:    lvl.HintsCount() - 1,
		KeyCount: len(lvl.KeySet()),
	}, nil
}

func newHintPayload(lvl level.Level, hintNumber int) (hintPayload, error) {
	hint, ok := lvl.Hint(hintNumber)
	if !ok {
		return hintPayload{}, fmt.Errorf("level %s has no hint %d", lvl.ID, hintNumber)
	}
	return hintPayload{LevelID: lvl.ID, HintNumber: hintNumber, Hint: hint, Last: lvl.IsLastHint(hintNumber)}, nil
}

func (p *Publisher) DuplicateKey(_ context.Context, key gameplay.KeyTime) error {
	return p.key(TypeDuplicateKey, key)
}

func (p *Publisher) CorrectKey(_ context.Context, key gameplay.KeyTime) error {
	return p.key(TypeCorrectKey, key)
}

func (p *Publisher) WrongKey(_ context.Context, key gameplay.KeyTime) error {
	return p.key(TypeWrongKey, key)
}

func (p *Publisher) key(typ string, key gameplay.KeyTime) error {
	return p.publish(p.TeamSubject(key.TeamID), Envelope{Type: typ, GameID: key.GameID, TeamID: key.TeamID}, key)
}

func (p *Publisher) GameFinished(_ context.Context, gameID string, t team.Team) error {
	return p.publish(p.TeamSubject(t.ID), Envelope{Type: TypeGameFinished, GameID: gameID, TeamID: t.ID}, teamPayload{Team: t})
}

func (p *Publisher) GameFinishedByAll(_ context.Context, gameID string, t team.Team) error {
	return p.publish(p.TeamSubject(t.ID), Envelope{Type: TypeGameFinishedByAll, GameID: gameID, TeamID: t.ID}, teamPayload{Team: t})
}

func (p *Publisher) SendTestPuzzle(_ context.Context, s leveltest.Suite, lvl level.Level) error {
	payload, err := newPuzzlePayload(lvl)
	if err != nil {
		return err
	}
	return p.publish(p.TesterSubject(s.TesterID), Envelope{Type: TypeTestPuzzle, GameID: s.GameID}, payload)
}

func (p *Publisher) SendTestHint(_ context.Context, s leveltest.Suite, hintNumber int, lvl level.Level) error {
	payload, err := newHintPayload(lvl, hintNumber)
	if err != nil {
		return err
	}
	return p.publish(p.TesterSubject(s.TesterID), Envelope{Type: TypeTestHint, GameID: s.GameID}, payload)
}

func (p *Publisher) TestKey(_ context.Context, key leveltest.KeyTime) error {
	return p.publish(p.TesterSubject(key.TesterID), Envelope{Type: TypeTestKey, GameID: key.GameID}, key)
}

// Notify publishes an organizer event. Events without recipients are dropped.
func (p *Publisher) Notify(_ context.Context, e event.Event) error {
	orgs := e.Recipients()
	if len(orgs) == 0 {
		p.logger.Debug().Str("kind", string(e.Kind())).Msg("event has no recipients, dropped")
		return nil
	}
	recipients := make([]string, len(orgs))
	for i, o := range orgs {
		recipients[i] = o.PlayerID
	}

	env := Envelope{Type: string(e.Kind()), Recipients: recipients}
	switch e := e.(type) {
	case event.LevelUp:
		env.GameID = e.GameID
		env.TeamID = e.Team.ID
	case event.NewOrg:
		env.GameID = e.GameID
	case event.LevelTestCompleted:
		env.GameID = e.GameID
	}
	return p.publish(p.OrgSubject(e.Kind()), env, e)
}

func (p *Publisher) publish(subject string, env Envelope, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", env.Type, err)
	}
	env.Payload = data
	env.SentAt = p.clock.Now().UTC()

	msg, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := p.conn.Publish(subject, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("type", env.Type).
		Str("game_id", env.GameID).
		Msg("message published")
	return nil
}
