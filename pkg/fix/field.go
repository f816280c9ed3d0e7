package fix

import (
	"bytes"
	"strconv"
)

// SOH is the delimiter byte terminating every field on the wire.
const SOH byte = 0x01

// Well-known tags the parser needs for frame detection.
const (
	TagBeginString = 8
	TagCheckSum    = 10
	TagMsgType     = 35
	TagSenderComp  = 49
	TagTargetComp  = 56
)

// beginStringPrefix is the value prefix that marks the start of a message.
var beginStringPrefix = []byte("FIX.")

// Field is a single raw tag=value pair. The value is not decoded further.
//
// A field whose raw text lacks an '=' separator or has a non-numeric tag
// keeps Tag == 0 and the entire raw text as Value; malformation is not
// detected at this layer.
type Field struct {
	Tag   int
	Value []byte
}

// parseField tokenizes one delimiter-terminated field. The input slice is
// not retained; the value bytes are copied.
func parseField(raw []byte) Field {
	eq := bytes.IndexByte(raw, '=')
	if eq <= 0 {
		return Field{Value: cloneBytes(raw)}
	}
	tag := 0
	for _, c := range raw[:eq] {
		if c < '0' || c > '9' {
			return Field{Value: cloneBytes(raw)}
		}
		tag = tag*10 + int(c-'0')
	}
	if tag == 0 {
		return Field{Value: cloneBytes(raw)}
	}
	return Field{Tag: tag, Value: cloneBytes(raw[eq+1:])}
}

// isBeginString reports whether f is a valid start marker: BeginString (8)
// carrying a FIX protocol identifier.
func isBeginString(f Field) bool {
	return f.Tag == TagBeginString && bytes.HasPrefix(f.Value, beginStringPrefix)
}

// String renders the field in wire form (without the trailing delimiter).
func (f Field) String() string {
	if f.Tag == 0 {
		return string(f.Value)
	}
	return strconv.Itoa(f.Tag) + "=" + string(f.Value)
}

// wireLen returns the encoded length of the field including its delimiter.
func (f Field) wireLen() int {
	if f.Tag == 0 {
		return len(f.Value) + 1
	}
	return intLen(f.Tag) + 1 + len(f.Value) + 1
}

func intLen(n int) int {
	l := 1
	for n >= 10 {
		n /= 10
		l++
	}
	return l
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
