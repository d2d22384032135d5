package protocol

import (
	"errors"
	"io"
	"strconv"
)

// Common decoding errors.
var (
	// ErrMalformedString is returned when a string's declared length would
	// read past the end of the buffer.
	ErrMalformedString = errors.New("protocol: string length overruns buffer")

	// ErrInvalidFloat is returned when a float-as-string field does not
	// parse as a decimal number.
	ErrInvalidFloat = errors.New("protocol: invalid float string")
)

// Decoder is a binary decoder that reads from a byte buffer.
// Truncated reads fail with io.ErrUnexpectedEOF; no read ever consumes a
// partial multi-byte value.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a new decoder from the given byte slice.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF returns true if all bytes have been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Position returns the current read position.
func (d *Decoder) Position() int {
	return d.pos
}

// Skip advances the position by n bytes.
func (d *Decoder) Skip(n int) error {
	if d.pos+n > len(d.buf) {
		return io.ErrUnexpectedEOF
	}
	d.pos += n
	return nil
}

// ReadByte reads a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes and returns them.
// The returned slice references the decoder's buffer; do not modify.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadBool reads a boolean (single byte: 0x00=false, anything else=true).
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0x00, nil
}

// ReadUint16 reads a uint16 ("short") in big-endian byte order.
func (d *Decoder) ReadUint16() (uint16, error) {
	if d.pos+2 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint16(d.buf[d.pos])<<8 | uint16(d.buf[d.pos+1])
	d.pos += 2
	return v, nil
}

// ReadInt32 reads an int32 ("integer") in big-endian byte order.
func (d *Decoder) ReadInt32() (int32, error) {
	v, err := d.ReadUint32()
	return int32(v), err
}

// ReadUint32 reads a uint32 in big-endian byte order.
func (d *Decoder) ReadUint32() (uint32, error) {
	if d.pos+4 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint32(d.buf[d.pos])<<24 | uint32(d.buf[d.pos+1])<<16 |
		uint32(d.buf[d.pos+2])<<8 | uint32(d.buf[d.pos+3])
	d.pos += 4
	return v, nil
}

// ReadString reads a length-prefixed UTF-8 string.
// Returns ErrMalformedString if the declared length exceeds the remaining
// buffer; the cursor is not advanced past the length prefix in that case.
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUint16()
	if err != nil {
		return "", err
	}
	n := int(length)
	if n > d.Remaining() {
		return "", ErrMalformedString
	}
	s := string(d.buf[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

// ReadFloatString reads a float that was wire-encoded as a decimal string.
func (d *Decoder) ReadFloatString() (float64, error) {
	s, err := d.ReadString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidFloat
	}
	return v, nil
}
