package app

import (
	"time"

	"github.com/bft-labs/fixship/internal/domain"
)

// Batcher accumulates decoded messages until a batch is ready to publish.
type Batcher struct {
	batch         *domain.Batch
	maxMessages   int
	maxBytes      int
	flushInterval time.Duration
	hardInterval  time.Duration
	lastFlush     time.Time
}

// NewBatcher creates a new batcher with the given limits. A limit of zero
// disables that trigger.
func NewBatcher(maxMessages, maxBytes int, flushInterval, hardInterval time.Duration) *Batcher {
	return &Batcher{
		batch:         domain.NewBatch(),
		maxMessages:   maxMessages,
		maxBytes:      maxBytes,
		flushInterval: flushInterval,
		hardInterval:  hardInterval,
		lastFlush:     time.Now(),
	}
}

// Add appends an envelope to the batch.
// Returns true if the batch should be published after this add (size trigger).
func (b *Batcher) Add(env domain.Envelope) bool {
	b.batch.Add(env)

	if b.maxMessages > 0 && b.batch.Size() >= b.maxMessages {
		return true
	}
	if b.maxBytes > 0 && b.batch.TotalBytes >= b.maxBytes {
		return true
	}
	return false
}

// ShouldFlush returns true if the batch should be published based on time triggers.
func (b *Batcher) ShouldFlush() bool {
	if b.batch.Empty() {
		return false
	}

	elapsed := time.Since(b.lastFlush)
	return elapsed >= b.flushInterval || elapsed >= b.hardInterval
}

// Batch returns the current batch.
func (b *Batcher) Batch() *domain.Batch {
	return b.batch
}

// Reset clears the batch and updates the last flush time.
func (b *Batcher) Reset() {
	b.batch.Reset()
	b.lastFlush = time.Now()
}

// HasPending returns true if there are envelopes waiting to be published.
func (b *Batcher) HasPending() bool {
	return !b.batch.Empty()
}
