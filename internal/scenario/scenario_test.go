package scenario

import (
	"testing"

	"github.com/ganot/questline/internal/domain/level"
	"github.com/stretchr/testify/require"
)

const nightRun = `
name: Night run
levels:
  - id: bridge
    keys: [shoot, " run "]
    time-hints:
      - time: 0
        hint:
          - type: text
            text: Find the bridge
      - time: 15
        hint:
          - type: gps
            latitude: 55.75
            longitude: 37.62
  - id: tower
    keys: [climb]
    time-hints:
      - time: 0
        hint:
          - type: photo
            file_id: tower.jpg
`

func TestParseGame(t *testing.T) {
	scn, err := ParseGame([]byte(nightRun))
	require.NoError(t, err)
	require.Equal(t, "Night run", scn.Name)
	require.Len(t, scn.Levels, 2)

	bridge := scn.Levels[0]
	require.Equal(t, "bridge", bridge.ID)
	require.ElementsMatch(t, []string{"SHOOT", "RUN"}, bridge.Keys)
	require.Len(t, bridge.TimeHints, 2)
	require.Equal(t, 15, bridge.TimeHints[1].Time)
	require.Equal(t, level.HintGPS, bridge.TimeHints[1].Hint[0].Type)
	require.InDelta(t, 55.75, bridge.TimeHints[1].Hint[0].Latitude, 1e-9)

	require.Equal(t, "tower.jpg", scn.Levels[1].TimeHints[0].Hint[0].FileID)
}

func TestParseGame_RoundTrip(t *testing.T) {
	scn, err := ParseGame([]byte(nightRun))
	require.NoError(t, err)

	data, err := MarshalGame(scn)
	require.NoError(t, err)

	again, err := ParseGame(data)
	require.NoError(t, err)
	require.Equal(t, scn, again)
}

func TestParseGame_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"not yaml":      `name: [unclosed`,
		"unknown field": "name: x\ncolour: red\n",
		"no name":       "levels: []\n",
		"bad key": `
name: x
levels:
  - id: l1
    keys: ["two words"]
    time-hints:
      - time: 0
        hint: [{type: text, text: go}]
`,
		"no puzzle": `
name: x
levels:
  - id: l1
    keys: [go]
    time-hints:
      - time: 5
        hint: [{type: text, text: late}]
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGame([]byte(doc))
			require.ErrorIs(t, err, level.ErrInvalidScenario)
		})
	}
}

func TestParseLevel(t *testing.T) {
	scn, err := ParseLevel([]byte(`
id: solo
keys: [a1, A1]
time-hints:
  - time: 0
    hint: [{type: text, text: go}]
`))
	require.NoError(t, err)
	require.Equal(t, []string{"A1"}, scn.Keys)
}
