package level_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ganot/questline/internal/domain/level"
	"github.com/stretchr/testify/require"
)

func textHint(minutes int, text string) level.TimeHint {
	return level.TimeHint{Time: minutes, Hint: []level.HintPart{{Type: level.HintText, Text: text}}}
}

func TestIsKeyValid(t *testing.T) {
	cases := map[string]bool{
		"SHOOT":     true,
		" run ":     true,
		"ключ42":    true,
		"":          false,
		"   ":       false,
		"two words": false,
		"SH-1":      false,
	}
	for key, want := range cases {
		require.Equal(t, want, level.IsKeyValid(key), "key %q", key)
	}
	require.False(t, level.IsKeyValid(string(make([]rune, 65))))
}

func TestKeySet(t *testing.T) {
	required := level.NewKeySet("shoot", "RUN")
	require.True(t, required.Contains(" Shoot "))
	require.False(t, required.Contains("JUMP"))

	typed := level.NewKeySet("RUN")
	require.False(t, required.Equal(typed))
	typed["SHOOT"] = struct{}{}
	require.True(t, required.Equal(typed))
	require.Equal(t, []string{"RUN", "SHOOT"}, required.Sorted())
}

func TestNextHintTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, now.Add(7*time.Minute), level.NextHintTime(3, 10, now))
	require.Equal(t, now, level.NextHintTime(5, 5, now))
}

func TestFirstHintTime(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	lvl := level.Level{Scenario: level.Scenario{TimeHints: []level.TimeHint{textHint(0, "puzzle"), textHint(15, "hint")}}}
	at, ok := level.FirstHintTime(lvl, now)
	require.True(t, ok)
	require.Equal(t, now.Add(15*time.Minute), at)

	single := level.Level{Scenario: level.Scenario{TimeHints: []level.TimeHint{textHint(0, "puzzle")}}}
	_, ok = level.FirstHintTime(single, now)
	require.False(t, ok)
}

func TestLevelHints(t *testing.T) {
	lvl := level.Level{Scenario: level.Scenario{TimeHints: []level.TimeHint{
		textHint(0, "puzzle"), textHint(10, "first"), textHint(20, "second"),
	}}}

	require.Equal(t, 3, lvl.HintsCount())
	require.True(t, lvl.IsLastHint(2))
	require.False(t, lvl.IsLastHint(1))
	_, ok := lvl.Hint(3)
	require.False(t, ok)

	require.Len(t, lvl.AvailableHints(0), 1)
	require.Len(t, lvl.AvailableHints(10*time.Minute), 2)
	require.Len(t, lvl.AvailableHints(time.Hour), 3)
}

func TestScenarioValidate(t *testing.T) {
	valid := level.Scenario{
		ID:        "first_level",
		Keys:      []string{"SHOOT", "RUN"},
		TimeHints: []level.TimeHint{textHint(0, "puzzle"), textHint(5, "hint")},
	}
	require.NoError(t, valid.Validate())

	backwards := valid
	backwards.TimeHints = []level.TimeHint{textHint(0, "puzzle"), textHint(10, "a"), textHint(5, "b")}
	require.True(t, errors.Is(backwards.Validate(), level.ErrInvalidScenario))

	noKeys := valid
	noKeys.Keys = nil
	require.True(t, errors.Is(noKeys.Validate(), level.ErrInvalidScenario))

	badID := valid
	badID.ID = "bad id"
	require.True(t, errors.Is(badID.Validate(), level.ErrInvalidScenario))

	badType := valid
	badType.TimeHints = []level.TimeHint{{Time: 0, Hint: []level.HintPart{{Type: "hologram"}}}}
	require.True(t, errors.Is(badType.Validate(), level.ErrInvalidScenario))
}

func TestScenarioNormalize(t *testing.T) {
	s := level.Scenario{Keys: []string{"shoot", "SHOOT", " run"}}
	s.Normalize()
	require.Equal(t, []string{"SHOOT", "RUN"}, s.Keys)
}
