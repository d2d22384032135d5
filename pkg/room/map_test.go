package room

import (
	"encoding/binary"
	"testing"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
)

// floorPlanPayload assembles a floor-plan message body around the given
// character grid.
func floorPlanPayload(grid string) *protocol.Decoder {
	enc := protocol.NewEncoder()
	enc.WriteBool(false) // legacy scale
	enc.WriteInt32(2)    // wall height
	enc.WriteString(grid)
	return protocol.NewDecoder(enc.Bytes())
}

// reliefPayload packs one big-endian int16 per tile.
func reliefPayload(values []int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.BigEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func TestParseFloorPlan(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("xxxx\r000x\rx00x\rxxxx"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}
	if m.Width != 4 || m.Height != 4 {
		t.Fatalf("dimensions = %dx%d, want 4x4", m.Width, m.Height)
	}
	if !m.Valid() {
		t.Fatal("Valid() = false after parse")
	}

	tests := []struct {
		x, y int
		void bool
	}{
		{0, 0, true},
		{1, 1, false},
		{0, 1, false},
		{3, 1, true},
		{1, 3, true},
	}
	for _, tt := range tests {
		tile, ok := m.At(tt.x, tt.y)
		if !ok {
			t.Fatalf("At(%d,%d) out of range", tt.x, tt.y)
		}
		if tile.Void != tt.void {
			t.Errorf("At(%d,%d).Void = %v, want %v", tt.x, tt.y, tile.Void, tt.void)
		}
	}
}

func TestParseFloorPlanUppercaseVoid(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("Xx\r00"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}
	if tile, _ := m.At(0, 0); !tile.Void {
		t.Error("uppercase X not treated as void")
	}
}

// A row shorter than the first row is right-padded with void: unknown
// territory is never walkable.
func TestParseFloorPlanShortRowPadding(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("0000\r00\r0000"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}
	if m.Width != 4 {
		t.Fatalf("Width = %d, want 4", m.Width)
	}
	if m.Walkable(2, 1) || m.Walkable(3, 1) {
		t.Error("padded tiles are walkable, want blocked")
	}
	if !m.Walkable(1, 1) {
		t.Error("Walkable(1,1) = false inside the short row")
	}
}

func TestDoorLocation(t *testing.T) {
	tests := []struct {
		name string
		grid string
		x, y int
	}{
		{"east-facing gap", "xxxx\r000x\rx00x\rxxxx", 0, 1},
		{"interior gap", "xxxx\rx0xx\rx00x\rxxxx", 1, 1},
		{"no gap", "xx\rxx", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseFloorPlan(floorPlanPayload(tt.grid))
			if err != nil {
				t.Fatalf("ParseFloorPlan() error = %v", err)
			}
			if m.DoorX != tt.x || m.DoorY != tt.y {
				t.Errorf("door = (%d,%d), want (%d,%d)", m.DoorX, m.DoorY, tt.x, tt.y)
			}
		})
	}
}

func TestWalkable(t *testing.T) {
	// 4x4 open square with a void column at x=3.
	m, err := ParseFloorPlan(floorPlanPayload("000x\r000x\r000x\r000x"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}

	// Blocking furniture on (2,3); height 1.5 on (1,1).
	relief := make([]int16, 16)
	relief[3*4+2] = reliefBlockedMask
	relief[1*4+1] = int16(1.5 * 256)
	m.ApplyRelief(reliefPayload(relief))

	tests := []struct {
		x, y int
		want bool
	}{
		{1, 1, true},
		{3, 1, false},   // void
		{2, 3, false},   // blocking furniture
		{2, 2, true},    // neighbor of the blocked tile
		{-1, 0, false},  // out of bounds
		{0, -1, false},  // out of bounds
		{4, 0, false},   // out of bounds
		{0, 100, false}, // out of bounds
	}
	for _, tt := range tests {
		if got := m.Walkable(tt.x, tt.y); got != tt.want {
			t.Errorf("Walkable(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if got := m.TileHeight(1, 1); got != 1.5 {
		t.Errorf("TileHeight(1,1) = %v, want 1.5", got)
	}
	if got := m.TileHeight(99, 99); got != 0 {
		t.Errorf("TileHeight out of range = %v, want 0", got)
	}
}

// The door stays passable even under a blocking furniture flag.
func TestDoorIgnoresFurniture(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("xxxx\r000x\rx00x\rxxxx"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}
	if m.DoorX != 0 || m.DoorY != 1 {
		t.Fatalf("door = (%d,%d), want (0,1)", m.DoorX, m.DoorY)
	}

	relief := make([]int16, 16)
	relief[1*4+0] = reliefBlockedMask // furniture dropped on the door
	relief[1*4+1] = reliefBlockedMask
	m.ApplyRelief(reliefPayload(relief))

	if !m.Walkable(0, 1) {
		t.Error("Walkable(door) = false under furniture, want true")
	}
	if m.Walkable(1, 1) {
		t.Error("Walkable(1,1) = true under furniture, want false")
	}
}

// The relief message carries no dimensions; short and oversized payloads
// must both be tolerated.
func TestApplyReliefLengthMismatch(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("00\r00"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}

	// Short: only the first two tiles covered.
	m.ApplyRelief(reliefPayload([]int16{reliefBlockedMask, 0}))
	if m.Walkable(0, 0) {
		t.Error("Walkable(0,0) = true, relief marked it blocked")
	}
	if !m.Walkable(0, 1) {
		t.Error("Walkable(0,1) = false, short relief must leave it open")
	}

	// Oversized: trailing data ignored.
	m.ApplyRelief(reliefPayload(make([]int16, 32)))
	if !m.Walkable(0, 0) {
		t.Error("Walkable(0,0) = false after clearing relief")
	}
}

func TestWalkableTiles(t *testing.T) {
	m, err := ParseFloorPlan(floorPlanPayload("x0\r00"))
	if err != nil {
		t.Fatalf("ParseFloorPlan() error = %v", err)
	}
	relief := make([]int16, 4)
	relief[1*2+1] = reliefBlockedMask // (1,1)
	m.ApplyRelief(reliefPayload(relief))

	tiles := m.WalkableTiles()
	if len(tiles) != 2 {
		t.Fatalf("len(WalkableTiles()) = %d, want 2", len(tiles))
	}
	for _, tile := range tiles {
		if !m.Walkable(tile.X, tile.Y) {
			t.Errorf("WalkableTiles() returned blocked tile (%d,%d)", tile.X, tile.Y)
		}
	}
}

func TestNilMapFailsSafe(t *testing.T) {
	var m *Map
	if m.Valid() {
		t.Error("nil map Valid() = true")
	}
	if m.Walkable(0, 0) {
		t.Error("nil map Walkable() = true")
	}
	if tiles := m.WalkableTiles(); tiles != nil {
		t.Errorf("nil map WalkableTiles() = %v, want nil", tiles)
	}
}
