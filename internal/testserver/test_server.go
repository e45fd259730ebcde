package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ganot/questline/internal/app"
	"github.com/ganot/questline/internal/notify"
	"github.com/ganot/questline/internal/scheduler"
	"github.com/ganot/questline/internal/sqlite"
	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Date(2026, 5, 1, 17, 0, 0, 0, time.UTC)

// TestServer is a complete questline instance: in-memory SQLite, in-memory
// jobs, a recording bus and a fake clock.
type TestServer struct {
	DB    *sqlite.DB
	App   *app.App
	Clock *clockwork.FakeClock
	Jobs  *scheduler.MemoryStore
	Bus   *Bus
}

func New(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	ts := &TestServer{
		DB:    db,
		Clock: clockwork.NewFakeClockAt(Epoch),
		Jobs:  scheduler.NewMemoryStore(),
		Bus:   &Bus{},
	}
	ts.App = app.New(app.Deps{
		DB:            db,
		Jobs:          ts.Jobs,
		Bus:           ts.Bus,
		SubjectPrefix: "questline",
		Runner:        scheduler.Config{Workers: 2, MaxAttempts: 1},
		TransportMode: "stdio",
		Clock:         ts.Clock,
		Logger:        zerolog.Nop(),
	})

	t.Cleanup(func() {
		_ = db.Close()
	})
	return ts
}

// Advance moves the clock forward and runs every job that became due.
func (ts *TestServer) Advance(t *testing.T, d time.Duration) {
	t.Helper()
	ts.Clock.Advance(d)
	_, err := ts.App.Runner.RunDue(context.Background())
	require.NoError(t, err)
}

// Client is an MCP session acting as one player.
type Client struct {
	PlayerID string
	session  *sdkmcp.ClientSession
}

// Connect opens an MCP session over in-memory transports.
func (ts *TestServer) Connect(t *testing.T, playerID string) *Client {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	ss, err := ts.App.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "questline-test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Close()
	})
	return &Client{PlayerID: playerID, session: cs}
}

// Call invokes a tool and decodes its JSON result into out, failing on tool errors.
func (c *Client) Call(t *testing.T, tool string, args map[string]any, out any) {
	t.Helper()
	text, isErr := c.call(t, tool, args)
	require.False(t, isErr, "%s failed: %s", tool, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out))
	}
}

// CallErr invokes a tool that is expected to fail and returns the error text.
func (c *Client) CallErr(t *testing.T, tool string, args map[string]any) string {
	t.Helper()
	text, isErr := c.call(t, tool, args)
	require.True(t, isErr, "%s succeeded: %s", tool, text)
	return text
}

func (c *Client) call(t *testing.T, tool string, args map[string]any) (string, bool) {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	params := &sdkmcp.CallToolParams{Name: tool, Arguments: args}
	if c.PlayerID != "" {
		params.Meta = sdkmcp.Meta{"player_id": c.PlayerID}
	}
	res, err := c.session.CallTool(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return text.Text, res.IsError
}

// Message is one envelope published on the bus.
type Message struct {
	Subject  string
	Envelope notify.Envelope
}

// Bus records published notifications.
type Bus struct {
	mu       sync.Mutex
	messages []Message
}

func (b *Bus) Publish(subject string, data []byte) error {
	var env notify.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, Message{Subject: subject, Envelope: env})
	return nil
}

// On returns the messages published on subject with the given envelope type, oldest first.
func (b *Bus) On(subject, typ string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Message
	for _, m := range b.messages {
		if m.Subject == subject && m.Envelope.Type == typ {
			out = append(out, m)
		}
	}
	return out
}
