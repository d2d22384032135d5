package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestEncoderDecoderRoundTrip(t *testing.T) {
	e := NewEncoder()

	e.WriteByte(0x42)
	e.WriteBytes([]byte{0x01, 0x02, 0x03})
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteUint16(0x1234)
	e.WriteInt32(-12345678)
	e.WriteUint32(0x89ABCDEF)
	e.WriteString("hello world")
	e.WriteString("")
	e.WriteFloatString(3.5)

	d := NewDecoder(e.Bytes())

	b, err := d.ReadByte()
	if err != nil || b != 0x42 {
		t.Errorf("ReadByte() = %x, %v; want 0x42, nil", b, err)
	}

	bs, err := d.ReadBytes(3)
	if err != nil || string(bs) != "\x01\x02\x03" {
		t.Errorf("ReadBytes(3) = %v, %v; want [1 2 3], nil", bs, err)
	}

	bt, err := d.ReadBool()
	if err != nil || bt != true {
		t.Errorf("ReadBool() = %v, %v; want true, nil", bt, err)
	}
	bf, err := d.ReadBool()
	if err != nil || bf != false {
		t.Errorf("ReadBool() = %v, %v; want false, nil", bf, err)
	}

	u16, err := d.ReadUint16()
	if err != nil || u16 != 0x1234 {
		t.Errorf("ReadUint16() = %x, %v; want 0x1234, nil", u16, err)
	}

	i32, err := d.ReadInt32()
	if err != nil || i32 != -12345678 {
		t.Errorf("ReadInt32() = %d, %v; want -12345678, nil", i32, err)
	}

	u32, err := d.ReadUint32()
	if err != nil || u32 != 0x89ABCDEF {
		t.Errorf("ReadUint32() = %x, %v; want 0x89ABCDEF, nil", u32, err)
	}

	s, err := d.ReadString()
	if err != nil || s != "hello world" {
		t.Errorf("ReadString() = %q, %v; want \"hello world\", nil", s, err)
	}

	empty, err := d.ReadString()
	if err != nil || empty != "" {
		t.Errorf("ReadString() = %q, %v; want \"\", nil", empty, err)
	}

	f, err := d.ReadFloatString()
	if err != nil || f != 3.5 {
		t.Errorf("ReadFloatString() = %v, %v; want 3.5, nil", f, err)
	}

	if !d.EOF() {
		t.Errorf("Decoder not at EOF, %d bytes remain", d.Remaining())
	}
}

func TestEncoderBigEndianLayout(t *testing.T) {
	e := NewEncoder()
	e.WriteUint16(0x0102)
	e.WriteInt32(0x03040506)

	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	got := e.Bytes()
	if len(got) != len(want) {
		t.Fatalf("encoded length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestEncoderStringLayout(t *testing.T) {
	e := NewEncoder()
	e.WriteString("ab")

	want := []byte{0x00, 0x02, 'a', 'b'}
	got := e.Bytes()
	if len(got) != len(want) {
		t.Fatalf("encoded length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte[%d] = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestDecoderTruncation(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(d *Decoder) error
	}{
		{"byte_empty", nil, func(d *Decoder) error { _, err := d.ReadByte(); return err }},
		{"short_one_byte", []byte{0x01}, func(d *Decoder) error { _, err := d.ReadUint16(); return err }},
		{"int_three_bytes", []byte{0x01, 0x02, 0x03}, func(d *Decoder) error { _, err := d.ReadInt32(); return err }},
		{"bool_empty", nil, func(d *Decoder) error { _, err := d.ReadBool(); return err }},
		{"string_no_prefix", []byte{0x00}, func(d *Decoder) error { _, err := d.ReadString(); return err }},
		{"bytes_overrun", []byte{0x01, 0x02}, func(d *Decoder) error { _, err := d.ReadBytes(3); return err }},
		{"skip_overrun", []byte{0x01}, func(d *Decoder) error { return d.Skip(2) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.read(NewDecoder(tc.buf))
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestDecoderMalformedString(t *testing.T) {
	// Declared length 5, only 2 bytes of content follow.
	d := NewDecoder([]byte{0x00, 0x05, 'a', 'b'})
	_, err := d.ReadString()
	if !errors.Is(err, ErrMalformedString) {
		t.Errorf("ReadString() error = %v, want ErrMalformedString", err)
	}
}

func TestDecoderInvalidFloat(t *testing.T) {
	e := NewEncoder()
	e.WriteString("not-a-number")
	_, err := NewDecoder(e.Bytes()).ReadFloatString()
	if !errors.Is(err, ErrInvalidFloat) {
		t.Errorf("ReadFloatString() error = %v, want ErrInvalidFloat", err)
	}
}

func TestFloatStringRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.5, 12.25, -3.75, 1024}
	for _, v := range values {
		e := NewEncoder()
		e.WriteFloatString(v)
		got, err := NewDecoder(e.Bytes()).ReadFloatString()
		if err != nil {
			t.Fatalf("ReadFloatString(%v) error = %v", v, err)
		}
		if got != v {
			t.Errorf("round trip = %v, want %v", got, v)
		}
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteInt32(99)
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", e.Len())
	}
	e.WriteByte(0x7F)
	if e.Len() != 1 || e.Bytes()[0] != 0x7F {
		t.Errorf("encoder reuse after Reset failed: % x", e.Bytes())
	}
}

func FuzzDecoder(f *testing.F) {
	seed := NewEncoder()
	seed.WriteInt32(-7)
	seed.WriteString("héllo")
	seed.WriteBool(true)
	seed.WriteFloatString(2.75)
	f.Add(seed.Bytes(), uint8(0))
	f.Add([]byte{0x00, 0x03, 'a'}, uint8(4))
	f.Add([]byte{}, uint8(2))

	// Arbitrary bytes through every read path: reads must error or
	// consume exactly their width, never panic or over-advance.
	f.Fuzz(func(t *testing.T, buf []byte, start uint8) {
		d := NewDecoder(buf)
		ops := []func() error{
			func() error { _, err := d.ReadByte(); return err },
			func() error { _, err := d.ReadBool(); return err },
			func() error { _, err := d.ReadUint16(); return err },
			func() error { _, err := d.ReadInt32(); return err },
			func() error { _, err := d.ReadString(); return err },
			func() error { _, err := d.ReadFloatString(); return err },
			func() error { _, err := d.ReadBytes(2); return err },
		}

		for i := int(start); ; i++ {
			before := d.Position()
			err := ops[i%len(ops)]()
			after := d.Position()
			if after < before || after > len(buf) {
				t.Fatalf("cursor moved %d -> %d with %d bytes", before, after, len(buf))
			}
			if err != nil {
				return
			}
			if after == before {
				t.Fatalf("successful read consumed no bytes at %d", before)
			}
		}
	})
}
