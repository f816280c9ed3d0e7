package app

import (
	"sync/atomic"
	"time"

	"github.com/bft-labs/fixship/internal/domain"
)

// Stats holds cumulative ingest counters shared by all session pumps.
// All methods are safe for concurrent use.
type Stats struct {
	messages atomic.Uint64
	bytes    atomic.Uint64
	sessions atomic.Uint64
}

// Seed initializes the counters from a loaded checkpoint.
func (s *Stats) Seed(cp domain.Checkpoint) {
	s.messages.Store(cp.MessagesTotal)
	s.bytes.Store(cp.BytesTotal)
	s.sessions.Store(cp.SessionsTotal)
}

// AddMessages records n published messages totaling the given wire bytes.
func (s *Stats) AddMessages(n, wireBytes int) {
	s.messages.Add(uint64(n))
	s.bytes.Add(uint64(wireBytes))
}

// AddSession records one newly identified session.
func (s *Stats) AddSession() {
	s.sessions.Add(1)
}

// Snapshot returns the counters as a checkpoint stamped with the current time.
func (s *Stats) Snapshot() domain.Checkpoint {
	return domain.Checkpoint{
		MessagesTotal: s.messages.Load(),
		BytesTotal:    s.bytes.Load(),
		SessionsTotal: s.sessions.Load(),
		UpdatedAt:     time.Now().UTC(),
	}
}
