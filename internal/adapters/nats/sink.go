// Package nats publishes decoded message batches to NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/bft-labs/fixship/internal/domain"
	"github.com/bft-labs/fixship/internal/ports"
)

// flushTimeout bounds the round trip that confirms a batch reached the server.
const flushTimeout = 5 * time.Second

// Sink publishes envelopes to per-message-type subjects plus a firehose
// subject carrying everything.
type Sink struct {
	conn   *nats.Conn
	prefix string
	logger ports.Logger
}

// NewSink creates a sink publishing under the given subject prefix.
func NewSink(conn *nats.Conn, prefix string, logger ports.Logger) *Sink {
	return &Sink{
		conn:   conn,
		prefix: prefix,
		logger: logger,
	}
}

// Publish sends every envelope in the batch and flushes the connection.
// An error on any envelope aborts the batch so the caller can retry it whole.
func (s *Sink) Publish(ctx context.Context, batch *domain.Batch) error {
	for i := range batch.Envelopes {
		env := &batch.Envelopes[i]

		payload, err := json.Marshal(env)
		if err != nil {
			return errors.Wrap(err, "marshal envelope")
		}

		subject := s.prefix + ".ingest." + subjectToken(env.MsgType)
		if err := s.conn.Publish(subject, payload); err != nil {
			return errors.Wrapf(err, "publish to %s", subject)
		}
		if err := s.conn.Publish(s.prefix+".ingest.all", payload); err != nil {
			return errors.Wrap(err, "publish to firehose")
		}
	}

	if err := s.conn.FlushTimeout(flushTimeout); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// subjectToken sanitizes a message type for use as a NATS subject token.
func subjectToken(msgType string) string {
	if msgType == "" {
		return "UNKNOWN"
	}
	var b strings.Builder
	for _, r := range msgType {
		switch r {
		case '.', '*', '>', ' ':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
