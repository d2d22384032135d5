package protocol

import "strconv"

// Encoder is a binary encoder that appends data to an internal buffer.
// It is designed for efficient packet composition without allocations in
// the hot path.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 64),
	}
}

// NewEncoderWithCap creates a new encoder with the specified initial capacity.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends a single byte.
// Note: This intentionally doesn't return error (unlike io.ByteWriter)
// because our buffer is unbounded and can always append.
func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteBytes appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteBool appends a boolean as a single byte (0x00 or 0x01).
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteUint16 appends a uint16 ("short") in big-endian byte order.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

// WriteInt32 appends an int32 ("integer") in big-endian byte order.
func (e *Encoder) WriteInt32(v int32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteUint32 appends a uint32 in big-endian byte order.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteString appends a length-prefixed UTF-8 string.
// Format: 2-byte big-endian length + string bytes. Strings longer than
// 65535 bytes are truncated at the prefix's capacity; the protocol never
// carries strings near that size.
func (e *Encoder) WriteString(s string) {
	if len(s) > 0xFFFF {
		s = s[:0xFFFF]
	}
	e.WriteUint16(uint16(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteFloatString appends a float rendered as its shortest decimal string,
// wire-encoded as a length-prefixed string. The protocol carries heights
// and Z coordinates this way rather than as IEEE 754 bits.
func (e *Encoder) WriteFloatString(v float64) {
	e.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
}
