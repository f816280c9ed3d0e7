// Package fixship ingests FIX tag=value streams over TCP, frames and
// decodes them incrementally, and publishes the decoded messages to NATS.
// Use New() to create an instance, then Start() to begin serving.
package fixship

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	fsAdapter "github.com/bft-labs/fixship/internal/adapters/fs"
	natsAdapter "github.com/bft-labs/fixship/internal/adapters/nats"
	redisAdapter "github.com/bft-labs/fixship/internal/adapters/redis"
	"github.com/bft-labs/fixship/internal/app"
	"github.com/bft-labs/fixship/internal/cliconfig"
	"github.com/bft-labs/fixship/internal/domain"
	"github.com/bft-labs/fixship/internal/ports"
	"github.com/bft-labs/fixship/internal/server"
	"github.com/bft-labs/fixship/pkg/log"
)

// Config is the full ingest configuration.
type Config = cliconfig.Config

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// State is the lifecycle state of a Fixship instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	return State(s)
}

// Fixship is a FIX ingest agent that can be embedded in other applications.
type Fixship struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	logger    ports.Logger

	mu     sync.RWMutex
	agent  *app.Agent
	srv    *server.Server
	nc     *nats.Conn
	redis  *goredis.Client
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Fixship instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin serving.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Fixship, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Fixship{
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(o.logger),
		logger:    o.logger,
	}, nil
}

// Start begins accepting FIX streams in the background.
// Returns immediately after the workers are launched.
// Returns an error if already running or if startup fails.
func (f *Fixship) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := f.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	f.ctx = runCtx
	f.cancel = cancel
	f.lifecycle.SetCancel(cancel)

	if err := f.connect(); err != nil {
		cancel()
		f.disconnect()
		_ = f.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	agentCfg := app.AgentConfig{
		InstanceID:         f.config.InstanceID,
		CheckpointInterval: f.config.CheckpointInterval,
		Session:            sessionConfig(f.config),
	}
	f.agent = app.NewAgent(agentCfg, f.opts.sink, f.opts.sessions, f.opts.checkpoints, f.logger)
	f.srv = server.New(f.config.ListenAddr, f.agent, f.logger)

	f.lifecycle.AddWorker()
	go func() {
		defer f.lifecycle.WorkerDone()

		if err := f.lifecycle.TransitionTo(app.StateRunning, "server starting"); err != nil {
			f.logger.Error("failed to transition to running", ports.Err(err))
			return
		}

		err := f.srv.Run(runCtx)
		if err != nil && runCtx.Err() == nil {
			f.logger.Error("server error", ports.Err(err))
			_ = f.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			cancel()
		}
	}()

	f.lifecycle.AddWorker()
	go func() {
		defer f.lifecycle.WorkerDone()
		_ = f.agent.RunCheckpoints(runCtx)
	}()

	if f.opts.watchConfig != "" {
		watcher := cliconfig.NewWatcher(f.opts.watchConfig, f.config, f.applyReload, f.logger)
		f.lifecycle.AddWorker()
		go func() {
			defer f.lifecycle.WorkerDone()
			watcher.Run(runCtx)
		}()
	}

	return nil
}

// connect builds the adapters that were not injected via options.
func (f *Fixship) connect() error {
	if f.opts.sink == nil {
		nc, err := nats.Connect(f.config.NATSURL,
			nats.Name("fixship-"+f.config.InstanceID),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return errors.Wrapf(err, "connect to nats at %s", f.config.NATSURL)
		}
		f.nc = nc
		f.opts.sink = natsAdapter.NewSink(nc, f.config.SubjectPrefix, f.logger)
		f.logger.Info("connected to nats", ports.String("url", f.config.NATSURL))
	}

	if f.opts.sessions == nil {
		if f.config.RedisAddr != "" {
			client := goredis.NewClient(&goredis.Options{Addr: f.config.RedisAddr})
			f.redis = client
			f.opts.sessions = redisAdapter.NewSessionRepository(client, f.config.SessionTTL)
			f.logger.Info("session registry enabled", ports.String("addr", f.config.RedisAddr))
		} else {
			f.opts.sessions = redisAdapter.NoopSessionRepository{}
		}
	}

	if f.opts.checkpoints == nil {
		store, err := fsAdapter.NewCheckpointStore(f.config.CheckpointDir)
		if err != nil {
			return err
		}
		f.opts.checkpoints = store
	}

	return nil
}

func (f *Fixship) disconnect() {
	if f.nc != nil {
		f.nc.Close()
		f.nc = nil
	}
	if f.redis != nil {
		_ = f.redis.Close()
		f.redis = nil
	}
}

// applyReload pushes the reloadable subset of a fresh config into the
// running agent.
func (f *Fixship) applyReload(cfg Config) {
	log.SetGlobalLevel(cfg.LogLevel)

	f.mu.RLock()
	agent := f.agent
	f.mu.RUnlock()
	if agent != nil {
		agent.ApplyDynamic(sessionConfig(cfg))
	}
}

// Stop gracefully shuts down the agent.
// In-flight sessions flush their pending batches on the way out.
// Waits up to 30 seconds before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (f *Fixship) Stop() error {
	f.mu.Lock()

	if !f.lifecycle.CanStop() {
		f.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := f.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Unlock()

	err := f.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	f.mu.Lock()
	f.disconnect()
	f.mu.Unlock()

	if err != nil {
		_ = f.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = f.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (f *Fixship) Status() State {
	return convertState(f.lifecycle.State())
}

// Addr returns the bound listen address, or nil before the listener is up.
// Useful when configured to listen on port 0.
func (f *Fixship) Addr() net.Addr {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.srv == nil {
		return nil
	}
	return f.srv.Addr()
}

// Stats returns the cumulative ingest counters, or a zero snapshot before
// the first Start.
func (f *Fixship) Stats() app.StatsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.agent == nil {
		return app.StatsSnapshot{}
	}
	return f.agent.Snapshot()
}

func sessionConfig(cfg Config) app.SessionConfig {
	return app.SessionConfig{
		ReadTimeout:       cfg.ReadTimeout,
		MaxBufferBytes:    cfg.MaxBufferBytes,
		MaxBatchMessages:  cfg.MaxBatchMessages,
		MaxBatchBytes:     cfg.MaxBatchBytes,
		FlushInterval:     cfg.FlushInterval,
		HardFlushInterval: cfg.HardFlushInterval,
	}
}
