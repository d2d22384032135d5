package protocol

import (
	"errors"
	"io"
)

// Frame sizing constants.
const (
	// LengthPrefixSize is the size of the plaintext length prefix in bytes.
	LengthPrefixSize = 4

	// HeaderSize is the size of the header ID in bytes.
	HeaderSize = 2

	// DefaultMaxFrameSize is the default ceiling for a frame's declared
	// length (header ID + payload). Real hotel traffic tops out well under
	// this; anything larger indicates stream corruption or an attack.
	DefaultMaxFrameSize = 512 * 1024
)

// Frame errors.
var (
	// ErrOversizedFrame is returned when a declared frame length exceeds the
	// configured ceiling. Once raised, the stream can no longer be trusted.
	ErrOversizedFrame = errors.New("protocol: frame length exceeds ceiling")

	// ErrShortFrame is returned when a frame region is too small to carry a
	// header ID.
	ErrShortFrame = errors.New("protocol: frame shorter than header")
)

// Packet is one protocol message: a numeric header ID and its payload.
//
// Wire format (4-byte plaintext prefix + enciphered region):
//
//	┌────────────────────┬──────────────┬──────────────────────────┐
//	│ Total Length       │ Header ID    │ Payload                  │
//	│ (4 bytes, BE)      │ (2 bytes BE) │ (Length - 2 bytes)       │
//	└────────────────────┴──────────────┴──────────────────────────┘
//
// The length field covers the header ID plus the payload.
type Packet struct {
	Header  uint16
	Payload []byte
}

// NewPacket creates a packet with the given header ID and an empty payload.
func NewPacket(header uint16) *Packet {
	return &Packet{Header: header}
}

// Encode encodes the packet to wire bytes including the length prefix.
func (p *Packet) Encode() []byte {
	total := HeaderSize + len(p.Payload)
	buf := make([]byte, LengthPrefixSize+total)
	buf[0] = byte(total >> 24)
	buf[1] = byte(total >> 16)
	buf[2] = byte(total >> 8)
	buf[3] = byte(total)
	buf[4] = byte(p.Header >> 8)
	buf[5] = byte(p.Header)
	copy(buf[LengthPrefixSize+HeaderSize:], p.Payload)
	return buf
}

// Region encodes the [header][payload] region without the length prefix.
// This is the portion a session cipher transforms.
func (p *Packet) Region() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))
	buf[0] = byte(p.Header >> 8)
	buf[1] = byte(p.Header)
	copy(buf[HeaderSize:], p.Payload)
	return buf
}

// Decoder returns a payload decoder positioned at the first payload byte.
func (p *Packet) Decoder() *Decoder {
	return NewDecoder(p.Payload)
}

// ParseRegion parses a complete [header][payload] region into a Packet.
// The region must already be decrypted. The payload slice references the
// input; callers that retain the packet past the region's lifetime must
// copy it.
func ParseRegion(region []byte) (*Packet, error) {
	if len(region) < HeaderSize {
		return nil, ErrShortFrame
	}
	return &Packet{
		Header:  uint16(region[0])<<8 | uint16(region[1]),
		Payload: region[HeaderSize:],
	}, nil
}

// Builder composes an outgoing packet field by field, mirroring how the
// client assembles messages: header first, then payload primitives in
// wire order.
type Builder struct {
	header uint16
	enc    *Encoder
}

// NewBuilder starts composing a packet with the given header ID.
func NewBuilder(header uint16) *Builder {
	return &Builder{header: header, enc: NewEncoder()}
}

// AddInt32 appends a 4-byte integer field.
func (b *Builder) AddInt32(v int32) *Builder {
	b.enc.WriteInt32(v)
	return b
}

// AddUint16 appends a 2-byte short field.
func (b *Builder) AddUint16(v uint16) *Builder {
	b.enc.WriteUint16(v)
	return b
}

// AddByte appends a single raw byte field.
func (b *Builder) AddByte(v byte) *Builder {
	b.enc.WriteByte(v)
	return b
}

// AddBool appends a boolean field.
func (b *Builder) AddBool(v bool) *Builder {
	b.enc.WriteBool(v)
	return b
}

// AddString appends a length-prefixed string field.
func (b *Builder) AddString(s string) *Builder {
	b.enc.WriteString(s)
	return b
}

// Packet finalizes the builder into a Packet.
func (b *Builder) Packet() *Packet {
	payload := make([]byte, b.enc.Len())
	copy(payload, b.enc.Bytes())
	return &Packet{Header: b.header, Payload: payload}
}

// ReadPacket reads one complete plaintext packet from an io.Reader.
// It is used during the key exchange, before any cipher is installed;
// steady-state traffic goes through Reassembler instead.
func ReadPacket(r io.Reader, maxFrame int) (*Packet, error) {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}

	prefix := make([]byte, LengthPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, err
	}
	length := int(prefix[0])<<24 | int(prefix[1])<<16 | int(prefix[2])<<8 | int(prefix[3])
	if length > maxFrame {
		return nil, ErrOversizedFrame
	}
	if length < HeaderSize {
		return nil, ErrShortFrame
	}

	region := make([]byte, length)
	if _, err := io.ReadFull(r, region); err != nil {
		return nil, err
	}
	return ParseRegion(region)
}
