// Package history keeps the ordered per-session message log the agent feeds
// back to the model on every turn.
package history

import (
	"context"
	"errors"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var ErrEmptySessionID = errors.New("history: empty session id")

// Message is one immutable entry of a session log. Messages written by the
// same turn share a TurnID.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	TurnID    string    `json:"turnId,omitempty"`
}

// Store is an append-only log keyed by session id.
// Append writes all given messages or none of them. When the last given
// message has a TurnID equal to the TurnID of the log's last entry the batch
// is already stored and Append does nothing.
type Store interface {
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// turnOf returns the TurnID that makes a batch idempotent, or "".
func turnOf(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].TurnID
}
