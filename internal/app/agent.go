package app

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/fixship/internal/ports"
)

// AgentConfig contains the agent-level configuration.
type AgentConfig struct {
	// InstanceID names this ingest process; connection ids derive from it.
	InstanceID string

	// CheckpointInterval controls how often counters are persisted.
	CheckpointInterval time.Duration

	Session SessionConfig
}

// Agent owns the shared ingest machinery: the sink, the session repository,
// counters and checkpointing. It hands each accepted connection its own
// session pump.
type Agent struct {
	sink        ports.MessageSink
	sessions    ports.SessionRepository
	checkpoints ports.CheckpointStore
	logger      ports.Logger

	stats   *Stats
	connSeq atomic.Uint64

	mu  sync.RWMutex
	cfg AgentConfig
}

// NewAgent creates an agent with the given collaborators.
func NewAgent(cfg AgentConfig, sink ports.MessageSink, sessions ports.SessionRepository, checkpoints ports.CheckpointStore, logger ports.Logger) *Agent {
	return &Agent{
		cfg:         cfg,
		sink:        sink,
		sessions:    sessions,
		checkpoints: checkpoints,
		logger:      logger,
		stats:       &Stats{},
	}
}

// HandleConn runs a session pump for one accepted connection. It blocks
// until the connection closes or ctx is canceled.
func (a *Agent) HandleConn(ctx context.Context, conn net.Conn) {
	a.mu.RLock()
	cfg := a.cfg
	a.mu.RUnlock()

	connID := fmt.Sprintf("%s-%d", cfg.InstanceID, a.connSeq.Add(1))
	pump := NewSessionPump(cfg.Session, connID, conn.RemoteAddr().String(), a.sink, a.sessions, a.stats, a.logger)

	if err := pump.Run(ctx, conn); err != nil && ctx.Err() == nil {
		a.logger.Warn("session ended with error",
			ports.String("conn", connID),
			ports.Err(err),
		)
	}
}

// RunCheckpoints restores counters from the last checkpoint and persists
// snapshots periodically until ctx is canceled. A final snapshot is written
// on the way out.
func (a *Agent) RunCheckpoints(ctx context.Context) error {
	cp, err := a.checkpoints.Load(ctx)
	if err != nil {
		a.logger.Warn("checkpoint load failed, starting fresh", ports.Err(err))
	} else {
		a.stats.Seed(cp)
		if cp.MessagesTotal > 0 || cp.SessionsTotal > 0 {
			a.logger.Info("checkpoint restored",
				ports.Uint64("messages", cp.MessagesTotal),
				ports.Uint64("bytes", cp.BytesTotal),
				ports.Uint64("sessions", cp.SessionsTotal),
			)
		}
	}

	a.mu.RLock()
	interval := a.cfg.CheckpointInterval
	a.mu.RUnlock()
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.saveCheckpoint()
			return ctx.Err()
		case <-ticker.C:
			a.saveCheckpoint()
		}
	}
}

func (a *Agent) saveCheckpoint() {
	ctx, cancel := context.WithTimeout(context.Background(), flushDrainTimeout)
	defer cancel()

	if err := a.checkpoints.Save(ctx, a.stats.Snapshot()); err != nil {
		a.logger.Error("checkpoint save failed", ports.Err(err))
	}
}

// ApplyDynamic swaps in the reloadable subset of the session configuration.
// Pumps created after the call pick up the new values; live pumps keep the
// configuration they started with.
func (a *Agent) ApplyDynamic(cfg SessionConfig) {
	a.mu.Lock()
	a.cfg.Session = cfg
	a.mu.Unlock()

	a.logger.Info("session configuration updated",
		ports.Int("max_buffer_bytes", cfg.MaxBufferBytes),
		ports.Int("max_batch_messages", cfg.MaxBatchMessages),
		ports.Duration("flush_interval", cfg.FlushInterval),
	)
}

// Snapshot returns the current ingest counters.
func (a *Agent) Snapshot() StatsSnapshot {
	cp := a.stats.Snapshot()
	return StatsSnapshot{
		MessagesTotal: cp.MessagesTotal,
		BytesTotal:    cp.BytesTotal,
		SessionsTotal: cp.SessionsTotal,
	}
}

// StatsSnapshot is a point-in-time copy of the ingest counters.
type StatsSnapshot struct {
	MessagesTotal uint64
	BytesTotal    uint64
	SessionsTotal uint64
}
