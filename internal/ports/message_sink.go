package ports

import (
	"context"

	"github.com/bft-labs/fixship/internal/domain"
)

// MessageSink publishes batches of decoded messages to a downstream system.
// Implementations handle serialization, transport and subject routing.
type MessageSink interface {
	// Publish transmits every envelope in the batch, preserving order.
	// Returns nil on success; on error the caller retries the whole batch,
	// so implementations should be idempotent where the transport allows.
	Publish(ctx context.Context, batch *domain.Batch) error
}
