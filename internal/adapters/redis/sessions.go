// Package redis keeps the registry of live FIX sessions in Redis.
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/bft-labs/fixship/internal/domain"
)

const keyPrefix = "fixship:sess:"

// SessionRepository stores one hash per live session, expiring after the
// configured TTL unless refreshed.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a repository with the given session TTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Register writes the session record and arms its expiry.
func (r *SessionRepository) Register(ctx context.Context, s domain.Session) error {
	key := keyPrefix + s.ID

	err := r.client.HSet(ctx, key,
		"remote_addr", s.RemoteAddr,
		"begin_string", s.BeginString,
		"connected_at", s.ConnectedAt.Format(time.RFC3339),
	).Err()
	if err != nil {
		return errors.Wrapf(err, "register session %s", s.ID)
	}

	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "expire session %s", s.ID)
	}
	return nil
}

// Touch refreshes the session's expiry.
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	if err := r.client.Expire(ctx, keyPrefix+id, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "touch session %s", id)
	}
	return nil
}

// Remove deletes the session record.
func (r *SessionRepository) Remove(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return errors.Wrapf(err, "remove session %s", id)
	}
	return nil
}

// NoopSessionRepository is used when no Redis address is configured.
type NoopSessionRepository struct{}

func (NoopSessionRepository) Register(ctx context.Context, s domain.Session) error { return nil }
func (NoopSessionRepository) Touch(ctx context.Context, id string) error           { return nil }
func (NoopSessionRepository) Remove(ctx context.Context, id string) error          { return nil }
