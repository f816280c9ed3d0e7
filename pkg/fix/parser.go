package fix

import "bytes"

// Parser translates a FIX byte stream into Message values.
//
// Bytes are accumulated with Append and resolved with Extract. The parser
// keeps two pieces of state between calls: a raw buffer holding the trailing
// bytes for which no delimiter has been seen yet, and a FIFO of complete
// fields not yet consumed into a message. The raw buffer never contains an
// embedded delimiter; any delimiter-terminated prefix is promoted to the
// pending field sequence on the next Extract.
type Parser struct {
	buf     []byte
	pending []Field

	// pendingBytes tracks the wire size of the pending fields so Buffered
	// stays O(1).
	pendingBytes int

	builder Builder
}

// ParserOption configures optional parser behavior.
type ParserOption func(*Parser)

// WithBuilder sets the message builder invoked for each detected frame.
// The default builder stores the frame fields verbatim in a Message.
func WithBuilder(b Builder) ParserOption {
	return func(p *Parser) {
		p.builder = b
	}
}

// NewParser returns a parser in its initial empty state.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{builder: defaultBuilder}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset discards all buffered bytes and pending fields, returning the
// parser to its initial state.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
	p.pending = p.pending[:0]
	p.pendingBytes = 0
}

// Append accumulates raw bytes from the transport. No parsing happens here;
// input may be fragmented arbitrarily, down to one byte per call.
func (p *Parser) Append(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffer returns a copy of the unconsumed raw buffer. Diagnostic use.
func (p *Parser) Buffer() []byte {
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	return out
}

// Buffered returns the total number of bytes held by the parser: the raw
// buffer plus the wire size of all pending fields. Callers use this to
// enforce an external memory cap on streams that never complete a frame.
func (p *Parser) Buffered() int {
	return len(p.buf) + p.pendingBytes
}

// Extract attempts to produce the next complete message.
//
// Leading fields that are not a BeginString (8=FIX...) start marker are
// silently discarded; this resynchronizes the stream after garbage or a
// truncated prior frame. Once a start marker heads the pending sequence the
// parser scans for a CheckSum field (tag 10); everything up to and
// including it forms one frame, handed to the builder in wire order.
//
// Returns nil when no complete message is available yet. That is the
// ordinary "need more data" condition, not an error: no accepted state is
// lost, and the call can simply be repeated after more bytes arrive.
func (p *Parser) Extract() *Message {
	p.tokenize()

	// Resynchronize: cut leading non-start-marker fields in one step.
	start := 0
	for start < len(p.pending) && !isBeginString(p.pending[start]) {
		start++
	}
	if start > 0 {
		p.cut(start)
	}
	if len(p.pending) == 0 {
		return nil
	}

	// Scan for the end marker. The start marker and everything after it
	// stay pending when none is found.
	end := -1
	for i := range p.pending {
		if p.pending[i].Tag == TagCheckSum {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}

	frame := make([]Field, end+1)
	copy(frame, p.pending[:end+1])
	p.cut(end + 1)
	return p.builder.Build(frame)
}

// tokenize promotes every delimiter-terminated field from the raw buffer to
// the pending sequence. The trailing fragment without a delimiter (possibly
// empty) remains as the new buffer content.
func (p *Parser) tokenize() {
	rest := p.buf
	for {
		i := bytes.IndexByte(rest, SOH)
		if i < 0 {
			break
		}
		f := parseField(rest[:i])
		p.pending = append(p.pending, f)
		p.pendingBytes += f.wireLen()
		rest = rest[i+1:]
	}
	if len(rest) != len(p.buf) {
		// Slide the fragment to the front, keeping the allocation.
		n := copy(p.buf, rest)
		p.buf = p.buf[:n]
	}
}

// cut drops the first n pending fields with a single copy.
func (p *Parser) cut(n int) {
	for i := 0; i < n; i++ {
		p.pendingBytes -= p.pending[i].wireLen()
	}
	m := copy(p.pending, p.pending[n:])
	// Release references so dropped field values can be collected.
	for i := m; i < len(p.pending); i++ {
		p.pending[i] = Field{}
	}
	p.pending = p.pending[:m]
}
