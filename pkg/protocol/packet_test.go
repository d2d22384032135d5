package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPacketEncode(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
		want   []byte
	}{
		{
			name:   "empty_payload",
			packet: Packet{Header: 0x0BB8},
			want:   []byte{0x00, 0x00, 0x00, 0x02, 0x0B, 0xB8},
		},
		{
			name:   "with_payload",
			packet: Packet{Header: 0x060F, Payload: []byte{0xDE, 0xAD}},
			want:   []byte{0x00, 0x00, 0x00, 0x04, 0x06, 0x0F, 0xDE, 0xAD},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.packet.Encode()
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Encode() = % x, want % x", got, tc.want)
			}

			// Region must equal the encoding minus the length prefix.
			if !bytes.Equal(tc.packet.Region(), tc.want[LengthPrefixSize:]) {
				t.Errorf("Region() = % x, want % x", tc.packet.Region(), tc.want[LengthPrefixSize:])
			}
		})
	}
}

func TestParseRegion(t *testing.T) {
	p, err := ParseRegion([]byte{0x06, 0x0F, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("ParseRegion() error = %v", err)
	}
	if p.Header != 0x060F {
		t.Errorf("Header = %#x, want 0x060F", p.Header)
	}
	if !bytes.Equal(p.Payload, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("Payload = % x, want 01 02 03", p.Payload)
	}
}

func TestParseRegionShort(t *testing.T) {
	if _, err := ParseRegion([]byte{0x06}); !errors.Is(err, ErrShortFrame) {
		t.Errorf("ParseRegion() error = %v, want ErrShortFrame", err)
	}
}

func TestBuilder(t *testing.T) {
	p := NewBuilder(1551).
		AddInt32(12).
		AddInt32(7).
		Packet()

	if p.Header != 1551 {
		t.Errorf("Header = %d, want 1551", p.Header)
	}

	d := p.Decoder()
	x, _ := d.ReadInt32()
	y, err := d.ReadInt32()
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if x != 12 || y != 7 {
		t.Errorf("decoded (%d, %d), want (12, 7)", x, y)
	}
	if !d.EOF() {
		t.Errorf("payload has %d trailing bytes", d.Remaining())
	}
}

func TestBuilderMixedFields(t *testing.T) {
	p := NewBuilder(901).
		AddString("hey").
		AddInt32(18).
		AddBool(true).
		AddByte(0x02).
		AddUint16(7).
		Packet()

	d := p.Decoder()
	s, _ := d.ReadString()
	n, _ := d.ReadInt32()
	b, _ := d.ReadBool()
	raw, _ := d.ReadByte()
	sh, err := d.ReadUint16()
	if err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if s != "hey" || n != 18 || !b || raw != 0x02 || sh != 7 {
		t.Errorf("decoded (%q, %d, %v, %#x, %d)", s, n, b, raw, sh)
	}
}

func TestReadPacket(t *testing.T) {
	wire := (&Packet{Header: 503, Payload: []byte("pg")}).Encode()
	p, err := ReadPacket(bytes.NewReader(wire), 0)
	if err != nil {
		t.Fatalf("ReadPacket() error = %v", err)
	}
	if p.Header != 503 || string(p.Payload) != "pg" {
		t.Errorf("ReadPacket() = {%d %q}", p.Header, p.Payload)
	}
}

func TestReadPacketOversized(t *testing.T) {
	wire := (&Packet{Header: 1, Payload: make([]byte, 64)}).Encode()
	_, err := ReadPacket(bytes.NewReader(wire), 32)
	if !errors.Is(err, ErrOversizedFrame) {
		t.Errorf("ReadPacket() error = %v, want ErrOversizedFrame", err)
	}
}

func TestReadPacketTruncatedStream(t *testing.T) {
	wire := (&Packet{Header: 1, Payload: []byte{1, 2, 3}}).Encode()
	_, err := ReadPacket(bytes.NewReader(wire[:len(wire)-1]), 0)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadPacket() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
