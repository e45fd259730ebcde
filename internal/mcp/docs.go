package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `questline runs live team games: teams solve levels by typing keys, hints arrive on a timer.

Core concepts:
- Game: a named, ordered list of levels. Only one game is active (collecting waivers or running) at a time.
- Level: a puzzle with a set of keys. A team moves on once every key of the level has been typed.
- Hints: time-hints of a level, the first one (time 0) is the puzzle itself. Later hints are revealed after their minute offset.
- Waiver: a player's yes/no/think vote to play the active game with a team. Teams with a yes vote play.

Players:
1) register_player, then create_team or join_team.
2) get_active_game; add_waiver with vote "yes" while the game collects waivers.
3) When the game runs: available_hints for the puzzle, submit_key for every key found, team_progress to see what is left.

Authors:
1) upsert_game with a YAML scenario (see questline://docs/scenario).
2) start_waivers, optionally add_organizer, then plan_start.
3) start_level_test plays one level alone before the teams do: submit_test_key until every key is in, and the organizers get the time it took. cancel_level_test drops a test.
4) game_log shows what happened; complete_game closes a finished game.

Identity: pass the player ID in the X-Questline-Player header (HTTP) or _meta.player_id (stdio). Tools also accept explicit player_id / author_id arguments.
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "questline://docs/scenario",
		Name:        "docs_scenario",
		Title:       "Game scenario format",
		Description: "YAML layout accepted by upsert_game.",
		Content: `# Game scenario

` + "```yaml" + `
name: Night run            # unique per author; re-uploading replaces the levels
levels:
  - id: bridge             # letters, digits, '-' and '_'
    keys: [shoot, run]     # case and surrounding spaces are ignored
    time-hints:
      - time: 0            # the puzzle, shown at level start
        hint:
          - type: text
            text: Find the bridge
      - time: 15           # minutes after the level starts
        hint:
          - type: gps
            latitude: 55.75
            longitude: 37.62
` + "```" + `

Rules:
- every level has at least one key and a time-hint at time 0;
- hint times never go back;
- a level id is used once per game;
- hint part types: text, gps, venue, photo, audio, video, document, animation, voice, video_note, contact, sticker;
- media parts carry file_id; gps and venue parts carry latitude and longitude.

A game can't be edited once waivers open.
`,
	},
	{
		URI:         "questline://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Game lifecycle",
		Description: "Statuses a game goes through and which tools move it.",
		Content: `# Game lifecycle

underconstruction | ready -> getting_waivers -> started -> finished -> complete

- upsert_game creates the game under construction, or replaces its levels.
- start_waivers opens waivers; no other game may be active.
- plan_start schedules the start. Teams hear about it before the start and receive the first puzzle at the start.
- The game becomes finished when the last playing team solves the last level.
- complete_game archives a finished game.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
