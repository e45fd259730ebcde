package notify

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// LogConn writes envelopes to the log instead of a bus. Used when no NATS URL is configured.
type LogConn struct {
	logger zerolog.Logger
}

// NewLogConn creates a LogConn.
func NewLogConn(logger zerolog.Logger) *LogConn {
	return &LogConn{logger: logger}
}

func (c *LogConn) Publish(subject string, data []byte) error {
	c.logger.Info().Str("subject", subject).RawJSON("envelope", json.RawMessage(data)).Msg("notification")
	return nil
}
