// Package scenario reads game and level scenarios written as YAML.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ganot/questline/internal/domain/game"
	"github.com/ganot/questline/internal/domain/level"
	"gopkg.in/yaml.v3"
)

// ParseGame decodes a game scenario. Unknown fields are rejected, and every
// level is normalized and validated.
func ParseGame(data []byte) (game.Scenario, error) {
	var scn game.Scenario
	if err := decode(data, &scn); err != nil {
		return game.Scenario{}, err
	}
	if scn.Name == "" {
		return game.Scenario{}, fmt.Errorf("%w: game name is required", level.ErrInvalidScenario)
	}
	for i := range scn.Levels {
		scn.Levels[i].Normalize()
		if err := scn.Levels[i].Validate(); err != nil {
			return game.Scenario{}, fmt.Errorf("level %d: %w", i+1, err)
		}
	}
	return scn, nil
}

// ParseLevel decodes a single level scenario.
func ParseLevel(data []byte) (level.Scenario, error) {
	var scn level.Scenario
	if err := decode(data, &scn); err != nil {
		return level.Scenario{}, err
	}
	scn.Normalize()
	if err := scn.Validate(); err != nil {
		return level.Scenario{}, err
	}
	return scn, nil
}

// MarshalGame encodes a game scenario back to YAML.
func MarshalGame(scn game.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(scn); err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", level.ErrInvalidScenario)
		}
		return fmt.Errorf("%w: %v", level.ErrInvalidScenario, err)
	}
	return nil
}
