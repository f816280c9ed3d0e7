package fix

import "strconv"

// Message holds the ordered fields of one complete frame, from BeginString
// up to and including CheckSum. It stores fields exactly as they appeared
// on the wire and does not validate them.
type Message struct {
	fields []Field
}

// Builder assembles a message value from the ordered fields of one detected
// frame. The parser invokes it exactly once per frame.
type Builder interface {
	Build(fields []Field) *Message
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(fields []Field) *Message

// Build calls f.
func (f BuilderFunc) Build(fields []Field) *Message { return f(fields) }

// defaultBuilder constructs a Message holding the frame fields verbatim.
var defaultBuilder = BuilderFunc(func(fields []Field) *Message {
	return &Message{fields: fields}
})

// NewMessage returns an empty message.
func NewMessage() *Message {
	return &Message{}
}

// Append adds a field at the end of the message.
func (m *Message) Append(f Field) {
	m.fields = append(m.fields, f)
}

// AppendPair adds a tag=value field at the end of the message.
func (m *Message) AppendPair(tag int, value []byte) {
	m.fields = append(m.fields, Field{Tag: tag, Value: cloneBytes(value)})
}

// Len returns the number of fields.
func (m *Message) Len() int {
	return len(m.fields)
}

// Field returns the i-th field in wire order.
func (m *Message) Field(i int) Field {
	return m.fields[i]
}

// Fields returns a copy of the field list in wire order.
func (m *Message) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Get returns the value of the first field with the given tag.
func (m *Message) Get(tag int) ([]byte, bool) {
	for _, f := range m.fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the value of the first field with the given tag as a
// string, or "" when absent.
func (m *Message) GetString(tag int) string {
	v, _ := m.Get(tag)
	return string(v)
}

// BeginString returns the protocol identifier (tag 8), e.g. "FIX.4.2".
func (m *Message) BeginString() string {
	return m.GetString(TagBeginString)
}

// MsgType returns the message type (tag 35), e.g. "0" for Heartbeat.
func (m *Message) MsgType() string {
	return m.GetString(TagMsgType)
}

// SenderCompID returns tag 49, the sender's firm identifier.
func (m *Message) SenderCompID() string {
	return m.GetString(TagSenderComp)
}

// WireLen returns the encoded size of the message in bytes.
func (m *Message) WireLen() int {
	n := 0
	for _, f := range m.fields {
		n += f.wireLen()
	}
	return n
}

// Encode renders the message back to wire form, each field terminated by
// the delimiter byte. Fields are written exactly as stored; body length and
// checksum are not recomputed.
func (m *Message) Encode() []byte {
	buf := make([]byte, 0, m.WireLen())
	for _, f := range m.fields {
		if f.Tag != 0 {
			buf = strconv.AppendInt(buf, int64(f.Tag), 10)
			buf = append(buf, '=')
		}
		buf = append(buf, f.Value...)
		buf = append(buf, SOH)
	}
	return buf
}
