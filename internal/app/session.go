package app

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/bft-labs/fixship/internal/domain"
	"github.com/bft-labs/fixship/internal/ports"
	"github.com/bft-labs/fixship/pkg/fix"
)

// readBufferSize is the transport read chunk size.
const readBufferSize = 4096

// flushDrainTimeout bounds the final flush attempt on disconnect/shutdown.
const flushDrainTimeout = 5 * time.Second

// SessionConfig contains per-session tunables.
type SessionConfig struct {
	// ReadTimeout is the per-read deadline; it also paces time-based flushes
	// while the stream is idle.
	ReadTimeout time.Duration

	// MaxBufferBytes caps the parser's accumulated state. A stream that
	// exceeds it without completing a frame gets its parser reset.
	MaxBufferBytes int

	MaxBatchMessages  int
	MaxBatchBytes     int
	FlushInterval     time.Duration
	HardFlushInterval time.Duration
}

// SessionPump drives one inbound FIX stream: it reads raw bytes, feeds the
// parser, converts extracted messages to envelopes and publishes them in
// batches. One pump per connection; not safe for concurrent use.
type SessionPump struct {
	cfg    SessionConfig
	connID string
	remote string

	parser  *fix.Parser
	batcher *Batcher
	back    *backoff

	sink     ports.MessageSink
	sessions ports.SessionRepository
	logger   ports.Logger
	stats    *Stats

	// sessionID is the connection id until the first message reveals the
	// peer's SenderCompID.
	sessionID  string
	registered bool
}

// NewSessionPump creates a pump for one connection.
func NewSessionPump(cfg SessionConfig, connID, remote string, sink ports.MessageSink, sessions ports.SessionRepository, stats *Stats, logger ports.Logger) *SessionPump {
	return &SessionPump{
		cfg:       cfg,
		connID:    connID,
		remote:    remote,
		parser:    fix.NewParser(),
		batcher:   NewBatcher(cfg.MaxBatchMessages, cfg.MaxBatchBytes, cfg.FlushInterval, cfg.HardFlushInterval),
		back:      newBackoff(DefaultBackoffInitial, DefaultBackoffMax),
		sink:      sink,
		sessions:  sessions,
		logger:    logger,
		stats:     stats,
		sessionID: connID,
	}
}

// Run executes the read-append-extract loop until the connection closes or
// the context is canceled. The connection is not closed here; the caller
// owns it.
func (s *SessionPump) Run(ctx context.Context, conn net.Conn) error {
	s.logger.Info("session opened",
		ports.String("conn", s.connID),
		ports.String("remote", s.remote),
	)
	defer s.close()

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-ctx.Done():
			s.finalFlush()
			return ctx.Err()
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		n, err := conn.Read(buf)
		if n > 0 {
			s.parser.Append(buf[:n])
			s.drain(ctx)
		}
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				// Idle tick: let time-based flush triggers fire.
				if s.batcher.ShouldFlush() {
					s.flush(ctx)
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				s.finalFlush()
				return nil
			}
			s.finalFlush()
			return err
		}

		if s.batcher.ShouldFlush() {
			s.flush(ctx)
		}
	}
}

// drain extracts every complete message currently available and enforces
// the buffer cap afterwards.
func (s *SessionPump) drain(ctx context.Context) {
	for {
		msg := s.parser.Extract()
		if msg == nil {
			break
		}
		s.identify(ctx, msg)

		if s.batcher.Add(s.envelope(msg)) {
			s.flush(ctx)
		}
	}

	if s.cfg.MaxBufferBytes > 0 && s.parser.Buffered() > s.cfg.MaxBufferBytes {
		s.logger.Warn("parser buffer cap exceeded, resetting",
			ports.String("session", s.sessionID),
			ports.Int("buffered", s.parser.Buffered()),
			ports.Int("cap", s.cfg.MaxBufferBytes),
		)
		s.parser.Reset()
	}
}

// identify names the session after the first decoded message and registers
// it in the session repository.
func (s *SessionPump) identify(ctx context.Context, msg *fix.Message) {
	if s.registered {
		return
	}
	if sender := msg.SenderCompID(); sender != "" {
		s.sessionID = sender
	}
	sess := domain.Session{
		ID:          s.sessionID,
		RemoteAddr:  s.remote,
		BeginString: msg.BeginString(),
		ConnectedAt: time.Now().UTC(),
	}
	if err := s.sessions.Register(ctx, sess); err != nil {
		s.logger.Error("session register failed",
			ports.String("session", s.sessionID),
			ports.Err(err),
		)
	}
	s.registered = true
	s.stats.AddSession()
	s.logger.Info("session identified",
		ports.String("session", s.sessionID),
		ports.String("begin_string", sess.BeginString),
	)
}

// envelope converts a parsed message into the published form.
func (s *SessionPump) envelope(msg *fix.Message) domain.Envelope {
	fields := make([]domain.FieldPair, msg.Len())
	for i := 0; i < msg.Len(); i++ {
		f := msg.Field(i)
		fields[i] = domain.FieldPair{Tag: f.Tag, Value: string(f.Value)}
	}
	return domain.Envelope{
		SessionID:   s.sessionID,
		RemoteAddr:  s.remote,
		BeginString: msg.BeginString(),
		MsgType:     msg.MsgType(),
		Fields:      fields,
		ReceivedAt:  time.Now().UTC(),
		WireBytes:   msg.WireLen(),
	}
}

// flush publishes the pending batch. On failure the batch is retained for
// retry and the pump backs off.
func (s *SessionPump) flush(ctx context.Context) {
	batch := s.batcher.Batch()
	if batch.Empty() {
		return
	}

	start := time.Now()
	if err := s.sink.Publish(ctx, batch); err != nil {
		s.logger.Error("publish failed",
			ports.String("session", s.sessionID),
			ports.Int("messages", batch.Size()),
			ports.Err(err),
		)
		s.back.Sleep(ctx.Done())
		return
	}

	s.logger.Debug("published batch",
		ports.String("session", s.sessionID),
		ports.Int("messages", batch.Size()),
		ports.Int("bytes", batch.TotalBytes),
		ports.Duration("duration", time.Since(start)),
	)

	s.stats.AddMessages(batch.Size(), batch.TotalBytes)
	if s.registered {
		if err := s.sessions.Touch(ctx, s.sessionID); err != nil {
			s.logger.Debug("session touch failed", ports.Err(err))
		}
	}
	s.batcher.Reset()
	s.back.Reset()
}

// finalFlush makes one last publish attempt with its own deadline, so a
// disconnect does not silently drop buffered messages.
func (s *SessionPump) finalFlush() {
	if !s.batcher.HasPending() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushDrainTimeout)
	defer cancel()
	s.flush(ctx)
}

// close removes the session record.
func (s *SessionPump) close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushDrainTimeout)
	defer cancel()

	if s.registered {
		if err := s.sessions.Remove(ctx, s.sessionID); err != nil {
			s.logger.Debug("session remove failed", ports.Err(err))
		}
	}
	s.logger.Info("session closed",
		ports.String("session", s.sessionID),
		ports.String("remote", s.remote),
	)
}
