package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const (
	playerIDKey contextKey = iota
)

// PlayerHeader carries the caller's player ID over HTTP.
const PlayerHeader = "X-Questline-Player"

// getPlayerID extracts the caller's player ID from context.
func getPlayerID(ctx context.Context) string {
	v, _ := ctx.Value(playerIDKey).(string)
	return v
}

// playerMiddleware extracts the player ID from the X-Questline-Player header (HTTP) or metadata (stdio).
func playerMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var playerID string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				playerID = extra.Header.Get(PlayerHeader)
			}

			// Some notifications (like "initialized") have nil params.
			if playerID == "" {
				if params := req.GetParams(); params != nil {
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if pid, ok := meta["player_id"].(string); ok {
								playerID = pid
							}
						}
					}()
				}
			}

			if playerID != "" {
				ctx = context.WithValue(ctx, playerIDKey, playerID)
			}

			return next(ctx, method, req)
		}
	}
}

// callerOr returns explicit when set, else the player ID carried by the request.
func callerOr(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return getPlayerID(ctx)
}
