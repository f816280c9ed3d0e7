package domain

import "time"

// FieldPair is one raw tag=value field in transport-friendly form.
// Fields the parser could not split keep Tag == 0 and the raw text in Value.
type FieldPair struct {
	Tag   int    `json:"tag"`
	Value string `json:"value"`
}

// Envelope is one decoded FIX message together with the session context it
// arrived on. This is the unit published downstream; fields are carried in
// original wire order and are not validated.
type Envelope struct {
	// SessionID identifies the inbound stream, SenderCompID (tag 49) when
	// known, otherwise the connection id.
	SessionID string `json:"session_id"`

	// RemoteAddr is the peer's network address.
	RemoteAddr string `json:"remote_addr"`

	// BeginString is the protocol identifier from tag 8, e.g. "FIX.4.2".
	BeginString string `json:"begin_string"`

	// MsgType is the message type from tag 35, empty when absent.
	MsgType string `json:"msg_type"`

	// Fields holds every field of the frame in wire order, markers included.
	Fields []FieldPair `json:"fields"`

	// ReceivedAt is when the complete frame was extracted.
	ReceivedAt time.Time `json:"received_at"`

	// WireBytes is the encoded size of the frame on the wire.
	WireBytes int `json:"wire_bytes"`
}

// Session describes an active inbound FIX stream.
type Session struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	BeginString string    `json:"begin_string"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Checkpoint holds cumulative ingest counters, persisted periodically so an
// operator can tell after a crash how far the tap had gotten.
type Checkpoint struct {
	MessagesTotal uint64    `json:"messages_total"`
	BytesTotal    uint64    `json:"bytes_total"`
	SessionsTotal uint64    `json:"sessions_total"`
	UpdatedAt     time.Time `json:"updated_at"`
}
