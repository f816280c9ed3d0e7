package app

import (
	"testing"
	"time"

	"github.com/bft-labs/fixship/internal/domain"
)

func TestBatcherSizeTrigger(t *testing.T) {
	b := NewBatcher(3, 0, time.Hour, time.Hour)

	env := domain.Envelope{MsgType: "0", WireBytes: 20}
	if b.Add(env) {
		t.Error("should not trigger after 1 message")
	}
	if b.Add(env) {
		t.Error("should not trigger after 2 messages")
	}
	if !b.Add(env) {
		t.Error("should trigger after 3 messages")
	}
}

func TestBatcherByteTrigger(t *testing.T) {
	b := NewBatcher(0, 100, time.Hour, time.Hour)

	if b.Add(domain.Envelope{WireBytes: 60}) {
		t.Error("should not trigger at 60 bytes")
	}
	if !b.Add(domain.Envelope{WireBytes: 60}) {
		t.Error("should trigger at 120 bytes")
	}
}

func TestBatcherTimeTrigger(t *testing.T) {
	b := NewBatcher(100, 0, 10*time.Millisecond, time.Hour)

	if b.ShouldFlush() {
		t.Error("empty batch should never flush")
	}

	b.Add(domain.Envelope{WireBytes: 10})
	if b.ShouldFlush() {
		t.Error("should not flush before interval")
	}

	time.Sleep(20 * time.Millisecond)
	if !b.ShouldFlush() {
		t.Error("should flush after interval")
	}
}

func TestBatcherReset(t *testing.T) {
	b := NewBatcher(10, 0, time.Hour, time.Hour)

	b.Add(domain.Envelope{WireBytes: 10})
	if !b.HasPending() {
		t.Fatal("expected pending envelopes")
	}

	b.Reset()
	if b.HasPending() {
		t.Error("expected no pending envelopes after reset")
	}
	if b.Batch().Size() != 0 {
		t.Errorf("batch size = %d, want 0", b.Batch().Size())
	}
}
