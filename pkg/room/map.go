// Package room maintains the client's view of the joined room: the
// walkability grid built from server-pushed map data and the table of
// avatars currently inside.
//
// The grid combines two messages. The floor plan is a character grid
// ('x' = void, anything else = floor) that fixes the room's dimensions.
// The relief overlay is a run of big-endian int16 values, one per tile
// in row-major order, carrying furniture collision and stack height.
// Every parse anomaly resolves toward blocked: an unknown tile is never
// walkable.
package room

import (
	"encoding/binary"
	"strings"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
)

// Relief overlay bit layout.
const (
	reliefBlockedMask = 1 << 14 // blocking furniture on the tile
	reliefHeightMask  = 0x3FFF  // tile height * 256
)

// Tile is one cell of the room grid.
type Tile struct {
	X, Y   int
	Height float64 // floor plus furniture stack, from the relief overlay
	Void   bool    // wall or hole in the floor plan
	Block  bool    // blocking furniture from the relief overlay
	Door   bool    // room entry tile, passable regardless of furniture
}

// Map is the walkability grid for one room. It is owned by the session's
// read loop and replaced wholesale on room change, never merged.
type Map struct {
	Width, Height int
	DoorX, DoorY  int

	tiles []Tile // row-major, Width*Height
}

// ParseFloorPlan builds a fresh map from the floor-plan message: a bool
// (legacy scale flag), an int32 (wall height), then the character grid
// with rows separated by '\r'. The first row fixes the width; shorter
// rows are right-padded with void and longer rows truncated.
func ParseFloorPlan(dec *protocol.Decoder) (*Map, error) {
	if _, err := dec.ReadBool(); err != nil { // legacy scale
		return nil, err
	}
	if _, err := dec.ReadInt32(); err != nil { // wall height
		return nil, err
	}
	grid, err := dec.ReadString()
	if err != nil {
		return nil, err
	}

	rows := strings.Split(strings.TrimSpace(grid), "\r")
	m := &Map{
		Height: len(rows),
		Width:  len(rows[0]),
		DoorX:  -1,
		DoorY:  -1,
	}
	if m.Width == 0 {
		m.Height = 0
		return m, nil
	}

	m.tiles = make([]Tile, m.Width*m.Height)
	for y, row := range rows {
		for x := 0; x < m.Width; x++ {
			void := true // pad short rows with void
			if x < len(row) {
				c := row[x]
				void = c == 'x' || c == 'X'
			}
			m.tiles[y*m.Width+x] = Tile{X: x, Y: y, Void: void}
		}
	}

	m.locateDoor()
	return m, nil
}

// locateDoor scans for a floor tile recessed into the walls: void above
// and to the left, plus void below (door facing east) or void to the
// right (door facing south). The first match wins.
func (m *Map) locateDoor() {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.voidAt(x, y) {
				continue
			}
			if !m.voidAt(x, y-1) || !m.voidAt(x-1, y) {
				continue
			}
			if m.voidAt(x, y+1) || m.voidAt(x+1, y) {
				m.DoorX, m.DoorY = x, y
				m.tiles[y*m.Width+x].Door = true
				return
			}
		}
	}
}

// voidAt treats coordinates beyond the grid edge as void: a door tile on
// the map border is recessed into the room's outer wall.
func (m *Map) voidAt(x, y int) bool {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return true
	}
	return m.tiles[y*m.Width+x].Void
}

// ApplyRelief overlays furniture collision and heights from the relief
// message: one big-endian int16 per tile, row-major. The message carries
// no dimensions of its own; data beyond the grid is ignored and a short
// payload updates only the tiles it covers.
func (m *Map) ApplyRelief(data []byte) {
	n := len(m.tiles)
	if max := len(data) / 2; max < n {
		n = max
	}
	for i := 0; i < n; i++ {
		v := int16(binary.BigEndian.Uint16(data[i*2:]))
		m.tiles[i].Block = v&reliefBlockedMask != 0
		m.tiles[i].Height = float64(v&reliefHeightMask) / 256.0
	}
}

// Valid reports whether the map has been populated from a floor plan.
func (m *Map) Valid() bool {
	return m != nil && m.Width > 0 && m.Height > 0
}

// At returns the tile at (x, y). The second return is false out of range.
func (m *Map) At(x, y int) (Tile, bool) {
	if m == nil || x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return Tile{}, false
	}
	return m.tiles[y*m.Width+x], true
}

// Walkable reports whether (x, y) is a legal movement destination:
// inside the grid, not void, and free of blocking furniture unless it
// is the door tile.
func (m *Map) Walkable(x, y int) bool {
	t, ok := m.At(x, y)
	if !ok || t.Void {
		return false
	}
	return !t.Block || t.Door
}

// TileHeight returns the tile's absolute height, 0 out of range.
func (m *Map) TileHeight(x, y int) float64 {
	t, ok := m.At(x, y)
	if !ok {
		return 0
	}
	return t.Height
}

// WalkableTiles returns every legal destination in the room, row-major.
func (m *Map) WalkableTiles() []Tile {
	if !m.Valid() {
		return nil
	}
	var out []Tile
	for _, t := range m.tiles {
		if m.Walkable(t.X, t.Y) {
			out = append(out, t)
		}
	}
	return out
}
