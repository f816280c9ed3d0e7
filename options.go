package fixship

import (
	"github.com/bft-labs/fixship/internal/ports"
	"github.com/bft-labs/fixship/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Option configures optional behavior of Fixship.
type Option func(*options)

// options holds the optional configuration for a Fixship instance.
type options struct {
	logger      ports.Logger
	sink        ports.MessageSink
	sessions    ports.SessionRepository
	checkpoints ports.CheckpointStore
	watchConfig string
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: &log.NoopLogger{},
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMessageSink replaces the NATS publisher with a custom sink.
// When set, no NATS connection is dialed.
func WithMessageSink(sink ports.MessageSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithSessionRepository replaces the Redis session registry with a custom
// repository. When set, no Redis client is created.
func WithSessionRepository(repo ports.SessionRepository) Option {
	return func(o *options) {
		o.sessions = repo
	}
}

// WithCheckpointStore replaces the on-disk checkpoint store.
func WithCheckpointStore(store ports.CheckpointStore) Option {
	return func(o *options) {
		o.checkpoints = store
	}
}

// WithConfigWatcher enables live reload of the config file at path.
// Reloads adjust the session tunables for new connections and the log level.
func WithConfigWatcher(path string) Option {
	return func(o *options) {
		o.watchConfig = path
	}
}
