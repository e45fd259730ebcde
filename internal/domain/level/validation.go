package level

import "fmt"

// Validate checks the scenario is playable.
func (s Scenario) Validate() error {
	if !IsLevelIDValid(s.ID) {
		return fmt.Errorf("%w: level id %q", ErrInvalidScenario, s.ID)
	}
	if len(s.Keys) == 0 {
		return fmt.Errorf("%w: level %s has no keys", ErrInvalidScenario, s.ID)
	}
	for _, k := range s.Keys {
		if !IsKeyValid(k) {
			return fmt.Errorf("%w: level %s key %q", ErrInvalidScenario, s.ID, k)
		}
	}
	if len(s.TimeHints) == 0 {
		return fmt.Errorf("%w: level %s has no puzzle", ErrInvalidScenario, s.ID)
	}
	if s.TimeHints[0].Time != 0 {
		return fmt.Errorf("%w: level %s puzzle must have time 0", ErrInvalidScenario, s.ID)
	}
	prev := 0
	for i, h := range s.TimeHints {
		if h.Time < prev {
			return fmt.Errorf("%w: level %s hint %d goes back in time", ErrInvalidScenario, s.ID, i)
		}
		prev = h.Time
		if len(h.Hint) == 0 {
			return fmt.Errorf("%w: level %s hint %d is empty", ErrInvalidScenario, s.ID, i)
		}
		for _, part := range h.Hint {
			if !part.Type.Valid() {
				return fmt.Errorf("%w: level %s hint %d has type %q", ErrInvalidScenario, s.ID, i, part.Type)
			}
		}
	}
	return nil
}

// Normalize upper-cases the keys and drops duplicates, keeping first-seen order.
func (s *Scenario) Normalize() {
	seen := make(map[string]struct{}, len(s.Keys))
	keys := make([]string, 0, len(s.Keys))
	for _, k := range s.Keys {
		nk := NormalizeKey(k)
		if _, ok := seen[nk]; ok {
			continue
		}
		seen[nk] = struct{}{}
		keys = append(keys, nk)
	}
	s.Keys = keys
}
