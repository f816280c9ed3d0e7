package ports

import (
	"context"

	"github.com/bft-labs/fixship/internal/domain"
)

// CheckpointStore persists cumulative ingest counters.
// Implementations write atomically so a crash never leaves a torn file.
type CheckpointStore interface {
	// Load retrieves the last saved checkpoint.
	// Returns a zero checkpoint and nil error if none exists.
	Load(ctx context.Context) (domain.Checkpoint, error)

	// Save persists the checkpoint atomically.
	Save(ctx context.Context, cp domain.Checkpoint) error
}
