// Package fix implements an incremental parser for the FIX tag=value wire
// format.
//
// The parser accumulates raw bytes from a transport, tolerates arbitrary
// fragmentation, resynchronizes after garbage or truncated frames, and emits
// complete messages as soon as they are available. It performs no semantic
// validation: field presence, data types, enumerations and the numeric value
// of the checksum are left to higher layers.
//
// # Usage
//
//	p := fix.NewParser()
//	for {
//	    n, err := conn.Read(buf)
//	    if err != nil {
//	        break
//	    }
//	    p.Append(buf[:n])
//	    for msg := p.Extract(); msg != nil; msg = p.Extract() {
//	        handle(msg)
//	    }
//	}
//
// A Parser instance is owned by exactly one stream; it is not safe for
// concurrent use. The parser does not bound its own buffer: callers that
// cannot trust the peer should cap Buffered() themselves and Reset() on
// overflow.
package fix
