package ports

import (
	"context"

	"github.com/bft-labs/fixship/internal/domain"
)

// SessionRepository tracks active inbound sessions so operators and other
// services can see which streams are connected to which tap instance.
// Records are expected to expire unless refreshed with Touch.
type SessionRepository interface {
	// Register stores a session record with a TTL.
	Register(ctx context.Context, sess domain.Session) error

	// Touch extends the TTL of an existing session record.
	Touch(ctx context.Context, sessionID string) error

	// Remove deletes the session record on disconnect.
	Remove(ctx context.Context, sessionID string) error
}
