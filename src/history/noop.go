package history

import (
	"context"

	"github.com/productstack/assistant"
)

// NoopArchiver discards turns. It is used when no archive backend is
// configured.
type NoopArchiver struct{}

func (NoopArchiver) SaveTurns(ctx context.Context, sessionID string, turns []assistant.Turn) error {
	return nil
}
