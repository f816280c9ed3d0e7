package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/fixship/internal/domain"
	"github.com/bft-labs/fixship/pkg/log"
)

type fakeSink struct {
	mu      sync.Mutex
	batches [][]domain.Envelope
	fail    bool
	err     error
}

func (f *fakeSink) Publish(ctx context.Context, batch *domain.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return f.err
	}
	envs := make([]domain.Envelope, len(batch.Envelopes))
	copy(envs, batch.Envelopes)
	f.batches = append(f.batches, envs)
	return nil
}

func (f *fakeSink) published() []domain.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Envelope
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

type fakeSessions struct {
	mu         sync.Mutex
	registered []domain.Session
	touched    int
	removed    []string
}

func (f *fakeSessions) Register(ctx context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, s)
	return nil
}

func (f *fakeSessions) Touch(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched++
	return nil
}

func (f *fakeSessions) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:       50 * time.Millisecond,
		MaxBufferBytes:    1 << 20,
		MaxBatchMessages:  1,
		MaxBatchBytes:     0,
		FlushInterval:     time.Hour,
		HardFlushInterval: time.Hour,
	}
}

// wire builds a FIX frame from "tag=value" pairs.
func wire(pairs ...string) string {
	return strings.Join(pairs, "\x01") + "\x01"
}

func runPump(t *testing.T, cfg SessionConfig, sink *fakeSink, sessions *fakeSessions, writes ...string) {
	t.Helper()

	client, server := testPipe(t)
	pump := NewSessionPump(cfg, "test-1", "pipe", sink, sessions, &Stats{}, &log.NoopLogger{})

	done := make(chan error, 1)
	go func() {
		done <- pump.Run(context.Background(), server)
	}()

	for _, w := range writes {
		if _, err := client.Write([]byte(w)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not stop after peer close")
	}
}

func TestSessionPumpPublishesMessages(t *testing.T) {
	sink := &fakeSink{}
	sessions := &fakeSessions{}

	msg := wire("8=FIX.4.2", "9=20", "35=0", "49=SENDER", "10=123")
	runPump(t, testSessionConfig(), sink, sessions, msg)

	envs := sink.published()
	if len(envs) != 1 {
		t.Fatalf("published %d envelopes, want 1", len(envs))
	}
	env := envs[0]
	if env.SessionID != "SENDER" {
		t.Errorf("SessionID = %q, want SENDER", env.SessionID)
	}
	if env.BeginString != "FIX.4.2" {
		t.Errorf("BeginString = %q, want FIX.4.2", env.BeginString)
	}
	if env.MsgType != "0" {
		t.Errorf("MsgType = %q, want 0", env.MsgType)
	}
	if len(env.Fields) != 5 {
		t.Errorf("Fields = %d, want 5", len(env.Fields))
	}
	if env.WireBytes != len(msg) {
		t.Errorf("WireBytes = %d, want %d", env.WireBytes, len(msg))
	}
}

func TestSessionPumpIdentifiesOnce(t *testing.T) {
	sink := &fakeSink{}
	sessions := &fakeSessions{}

	runPump(t, testSessionConfig(), sink, sessions,
		wire("8=FIX.4.2", "35=0", "49=ACME", "10=001"),
		wire("8=FIX.4.2", "35=D", "49=ACME", "10=002"),
	)

	if len(sessions.registered) != 1 {
		t.Fatalf("registered %d sessions, want 1", len(sessions.registered))
	}
	if sessions.registered[0].ID != "ACME" {
		t.Errorf("session id = %q, want ACME", sessions.registered[0].ID)
	}
	if len(sessions.removed) != 1 || sessions.removed[0] != "ACME" {
		t.Errorf("removed = %v, want [ACME]", sessions.removed)
	}
	if len(sink.published()) != 2 {
		t.Errorf("published %d envelopes, want 2", len(sink.published()))
	}
}

func TestSessionPumpFallsBackToConnID(t *testing.T) {
	sink := &fakeSink{}
	sessions := &fakeSessions{}

	runPump(t, testSessionConfig(), sink, sessions,
		wire("8=FIX.4.2", "35=0", "10=001"),
	)

	envs := sink.published()
	if len(envs) != 1 {
		t.Fatalf("published %d envelopes, want 1", len(envs))
	}
	if envs[0].SessionID != "test-1" {
		t.Errorf("SessionID = %q, want test-1", envs[0].SessionID)
	}
}

func TestSessionPumpFinalFlushOnClose(t *testing.T) {
	sink := &fakeSink{}
	sessions := &fakeSessions{}

	// Large batch limits so nothing flushes while the stream is open.
	cfg := testSessionConfig()
	cfg.MaxBatchMessages = 100

	runPump(t, cfg, sink, sessions,
		wire("8=FIX.4.2", "35=0", "49=S", "10=001"),
		wire("8=FIX.4.2", "35=0", "49=S", "10=002"),
	)

	if got := len(sink.published()); got != 2 {
		t.Errorf("published %d envelopes after close, want 2", got)
	}
}

func TestSessionPumpBufferCapReset(t *testing.T) {
	sink := &fakeSink{}
	sessions := &fakeSessions{}

	cfg := testSessionConfig()
	cfg.MaxBufferBytes = 32

	// An oversized partial frame with no end marker, then a clean message.
	partial := "8=FIX.4.2\x0158=" + strings.Repeat("x", 100)
	runPump(t, cfg, sink, sessions,
		partial,
		wire("8=FIX.4.2", "35=0", "49=S", "10=001"),
	)

	envs := sink.published()
	if len(envs) != 1 {
		t.Fatalf("published %d envelopes, want 1", len(envs))
	}
	if envs[0].MsgType != "0" {
		t.Errorf("MsgType = %q, want 0", envs[0].MsgType)
	}
}

func TestSessionPumpRetainsBatchOnPublishFailure(t *testing.T) {
	sink := &fakeSink{fail: true, err: context.DeadlineExceeded}
	sessions := &fakeSessions{}

	client, server := testPipe(t)
	pump := NewSessionPump(testSessionConfig(), "test-1", "pipe", sink, sessions, &Stats{}, &log.NoopLogger{})

	done := make(chan error, 1)
	go func() {
		done <- pump.Run(context.Background(), server)
	}()

	if _, err := client.Write([]byte(wire("8=FIX.4.2", "35=0", "49=S", "10=001"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Give the pump time to attempt (and fail) the first publish.
	time.Sleep(100 * time.Millisecond)

	if got := len(sink.published()); got != 0 {
		t.Fatalf("published %d envelopes while sink failing, want 0", got)
	}

	// Recover the sink; the close-time flush should deliver the retained batch.
	sink.mu.Lock()
	sink.fail = false
	sink.mu.Unlock()

	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not stop")
	}

	if got := len(sink.published()); got != 1 {
		t.Errorf("published %d envelopes after recovery, want 1", got)
	}
}
