package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// SessionRepository is the checkpoint store contract for multi-turn
// conversations, keyed by the caller-supplied session identifier. Distinct
// session IDs must never observe each other's state.
type SessionRepository interface {
	// AddMessage appends a message to the session history
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadHistory retrieves the full persisted history for a session;
	// an unknown session yields an empty history, not an error
	LoadHistory(ctx context.Context, sessionID string) (*SessionHistory, error)

	// ClearHistory removes all persisted history for a session
	ClearHistory(ctx context.Context, sessionID string) error

	// MessageCount returns the number of persisted messages in the session
	MessageCount(ctx context.Context, sessionID string) (int, error)
}

// SessionHistory represents loaded session data.
type SessionHistory struct {
	SessionID string
	Messages  []*schema.Message
}
