package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
)

// ChatEvent is the most recent spoken line, with the speaker resolved
// from the occupant table at the time it arrived.
type ChatEvent struct {
	Index   int
	Name    string
	Message string
	Time    time.Time
}

// Model is the client's live view of the joined room. The session's
// read loop is its only writer; callers read through the accessor
// methods. All methods are safe for concurrent use.
type Model struct {
	mu sync.RWMutex

	log *slog.Logger

	m             *Map
	pendingRelief []byte // relief overlay that arrived before the floor plan

	occupants map[int]Occupant

	selfName  string
	selfIndex int
	selfX     int
	selfY     int
	selfKnown bool

	lastChat ChatEvent
	hasChat  bool
}

// NewModel creates an empty room model.
func NewModel(log *slog.Logger) *Model {
	if log == nil {
		log = slog.Default()
	}
	return &Model{
		log:       log,
		occupants: make(map[int]Occupant),
		selfIndex: -1,
	}
}

// Reset discards all room state. Called on room change and disconnect;
// the next floor plan starts from scratch.
func (md *Model) Reset() {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.m = nil
	md.pendingRelief = nil
	md.occupants = make(map[int]Occupant)
	md.selfIndex = -1
	md.selfKnown = false
	md.hasChat = false
}

// SetSelfName records the account's own avatar name, used to recognize
// the bot's entry in occupant lists.
func (md *Model) SetSelfName(name string) {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.selfName = name
}

// ApplyFloorPlan replaces the map wholesale from a floor-plan message.
// A relief overlay that arrived ahead of the plan is applied now.
func (md *Model) ApplyFloorPlan(dec *protocol.Decoder) error {
	m, err := ParseFloorPlan(dec)
	if err != nil {
		return err
	}
	md.mu.Lock()
	defer md.mu.Unlock()
	md.m = m
	if md.pendingRelief != nil {
		m.ApplyRelief(md.pendingRelief)
		md.pendingRelief = nil
	}
	return nil
}

// ApplyRelief overlays furniture data onto the current map. The two map
// messages race on room entry; relief arriving first is parked until the
// floor plan lands.
func (md *Model) ApplyRelief(payload []byte) {
	md.mu.Lock()
	defer md.mu.Unlock()
	if md.m.Valid() {
		md.m.ApplyRelief(payload)
		return
	}
	md.pendingRelief = append([]byte(nil), payload...)
}

// ApplyUsers merges an occupant list: unknown indices insert, known
// indices overwrite. The bot's own entry, matched by name, fixes its
// room index and authoritative position.
func (md *Model) ApplyUsers(dec *protocol.Decoder) error {
	occupants, err := ParseUsers(dec)

	md.mu.Lock()
	for _, o := range occupants {
		md.occupants[o.Index] = o
		if md.selfName != "" && o.Name == md.selfName {
			md.selfIndex = o.Index
			md.selfX, md.selfY = o.X, o.Y
			md.selfKnown = true
		}
	}
	md.mu.Unlock()
	return err
}

// ApplyPositionUpdates moves occupants per the avatar status message.
// Unknown indices insert a placeholder entry. A server echo that lands
// the bot on a blocked tile is recorded as-is: the server adjudicates
// positions, the model only flags the anomaly.
func (md *Model) ApplyPositionUpdates(dec *protocol.Decoder) error {
	updates, err := ParsePositionUpdates(dec)

	md.mu.Lock()
	for _, u := range updates {
		o, ok := md.occupants[u.Index]
		if !ok {
			o = Occupant{Index: u.Index}
		}
		o.X, o.Y, o.Z = u.X, u.Y, u.Z
		md.occupants[u.Index] = o

		if u.Index == md.selfIndex {
			if md.m.Valid() && !md.m.Walkable(u.X, u.Y) {
				md.log.Warn("own position update onto blocked tile",
					"x", u.X, "y", u.Y)
			}
			md.selfX, md.selfY = u.X, u.Y
			md.selfKnown = true
		}
	}
	md.mu.Unlock()
	return err
}

// ApplyRemove deletes an occupant on departure.
func (md *Model) ApplyRemove(dec *protocol.Decoder) error {
	index, err := ParseUserRemove(dec)
	if err != nil {
		return err
	}
	md.mu.Lock()
	delete(md.occupants, index)
	md.mu.Unlock()
	return nil
}

// ApplyChat records the latest chat line, resolving the speaker's name
// from the occupant table.
func (md *Model) ApplyChat(dec *protocol.Decoder) (ChatEvent, error) {
	c, err := ParseChat(dec)
	if err != nil {
		return ChatEvent{}, err
	}
	md.mu.Lock()
	ev := ChatEvent{
		Index:   c.Index,
		Message: c.Message,
		Time:    time.Now(),
	}
	if o, ok := md.occupants[c.Index]; ok {
		ev.Name = o.Name
	}
	md.lastChat = ev
	md.hasChat = true
	md.mu.Unlock()
	return ev, nil
}

// ApplyEntryTile records the spawn tile pushed on room entry.
func (md *Model) ApplyEntryTile(dec *protocol.Decoder) error {
	x, err := dec.ReadInt32()
	if err != nil {
		return err
	}
	y, err := dec.ReadInt32()
	if err != nil {
		return err
	}
	md.mu.Lock()
	md.selfX, md.selfY = int(x), int(y)
	md.selfKnown = true
	md.mu.Unlock()
	return nil
}

// NoteMove optimistically records a movement the bot just requested.
// The next server echo overwrites it either way.
func (md *Model) NoteMove(x, y int) {
	md.mu.Lock()
	md.selfX, md.selfY = x, y
	md.selfKnown = true
	md.mu.Unlock()
}

// Position returns the bot's current tile. ok is false before the
// server has placed the bot anywhere.
func (md *Model) Position() (x, y int, ok bool) {
	md.mu.RLock()
	defer md.mu.RUnlock()
	return md.selfX, md.selfY, md.selfKnown
}

// MapValid reports whether a floor plan has been loaded.
func (md *Model) MapValid() bool {
	md.mu.RLock()
	defer md.mu.RUnlock()
	return md.m.Valid()
}

// Walkable reports whether (x, y) is a legal destination on the current
// map. Without a map, nothing is walkable.
func (md *Model) Walkable(x, y int) bool {
	md.mu.RLock()
	defer md.mu.RUnlock()
	return md.m.Valid() && md.m.Walkable(x, y)
}

// WalkableTiles returns every legal destination in the current room.
func (md *Model) WalkableTiles() []Tile {
	md.mu.RLock()
	defer md.mu.RUnlock()
	return md.m.WalkableTiles()
}

// TileHeight returns the absolute height of a tile, 0 without a map.
func (md *Model) TileHeight(x, y int) float64 {
	md.mu.RLock()
	defer md.mu.RUnlock()
	if !md.m.Valid() {
		return 0
	}
	return md.m.TileHeight(x, y)
}

// Occupants returns a snapshot of everyone in the room.
func (md *Model) Occupants() []Occupant {
	md.mu.RLock()
	defer md.mu.RUnlock()
	out := make([]Occupant, 0, len(md.occupants))
	for _, o := range md.occupants {
		out = append(out, o)
	}
	return out
}

// Occupant looks up one avatar by room index.
func (md *Model) Occupant(index int) (Occupant, bool) {
	md.mu.RLock()
	defer md.mu.RUnlock()
	o, ok := md.occupants[index]
	return o, ok
}

// LastChat returns the most recent chat line, if any arrived.
func (md *Model) LastChat() (ChatEvent, bool) {
	md.mu.RLock()
	defer md.mu.RUnlock()
	return md.lastChat, md.hasChat
}
