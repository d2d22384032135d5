package room

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
)

// Occupant is an avatar inside the current room, keyed by the per-room
// transient index the server assigns on entry. The index, not the web
// ID, is what movement and chat messages reference.
type Occupant struct {
	Index  int
	WebID  int
	Name   string
	Motto  string
	Figure string
	Gender string
	X, Y   int
	Z      float64
}

// entityHuman is the occupant type whose extended block the parser
// understands. Pets and rentable bots carry trailing layouts of their
// own; encountering one ends the parse of the message.
const entityHuman = 1

// Smallest possible wire size of one record, used to cap preallocation:
// a count promising more records than the payload can physically hold
// is corrupt and must not drive an allocation.
const (
	occupantRecordMin = 32
	positionRecordMin = 24
)

// ParseUsers decodes the room-entry occupant list. The message is a
// count followed by per-occupant records; human records carry an
// extended block (gender, group, achievement score). Records of other
// entity types have layouts this client does not know, so parsing stops
// there and the occupants decoded so far are returned.
func ParseUsers(dec *protocol.Decoder) ([]Occupant, error) {
	count, err := dec.ReadInt32()
	if err != nil {
		return nil, err
	}

	if count < 0 {
		return nil, fmt.Errorf("room: negative occupant count %d", count)
	}

	occupants := make([]Occupant, 0, min(int(count), dec.Remaining()/occupantRecordMin))
	for i := int32(0); i < count; i++ {
		var o Occupant
		var webID, index, x, y int32

		if webID, err = dec.ReadInt32(); err != nil {
			return occupants, err
		}
		if o.Name, err = dec.ReadString(); err != nil {
			return occupants, err
		}
		if o.Motto, err = dec.ReadString(); err != nil {
			return occupants, err
		}
		if o.Figure, err = dec.ReadString(); err != nil {
			return occupants, err
		}
		if index, err = dec.ReadInt32(); err != nil {
			return occupants, err
		}
		if x, err = dec.ReadInt32(); err != nil {
			return occupants, err
		}
		if y, err = dec.ReadInt32(); err != nil {
			return occupants, err
		}
		if o.Z, err = dec.ReadFloatString(); err != nil {
			return occupants, err
		}
		if _, err = dec.ReadInt32(); err != nil { // body direction
			return occupants, err
		}
		entityType, err := dec.ReadInt32()
		if err != nil {
			return occupants, err
		}

		o.WebID, o.Index, o.X, o.Y = int(webID), int(index), int(x), int(y)

		if entityType != entityHuman {
			occupants = append(occupants, o)
			return occupants, nil
		}

		if o.Gender, err = dec.ReadString(); err != nil {
			return occupants, err
		}
		if _, err = dec.ReadInt32(); err != nil { // group id
			return occupants, err
		}
		if _, err = dec.ReadInt32(); err != nil { // group status
			return occupants, err
		}
		if _, err = dec.ReadString(); err != nil { // group name
			return occupants, err
		}
		if _, err = dec.ReadString(); err != nil { // figure update marker
			return occupants, err
		}
		if _, err = dec.ReadInt32(); err != nil { // achievement score
			return occupants, err
		}
		if _, err = dec.ReadBool(); err != nil { // moderator
			return occupants, err
		}

		occupants = append(occupants, o)
	}
	return occupants, nil
}

// PositionUpdate is one avatar movement step from the status message.
type PositionUpdate struct {
	Index  int
	X, Y   int
	Z      float64
	Action string // "mv 3,4", "sit", "" when idle
}

// ParsePositionUpdates decodes the avatar status message: a count
// followed by per-avatar position records.
func ParsePositionUpdates(dec *protocol.Decoder) ([]PositionUpdate, error) {
	count, err := dec.ReadInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("room: negative avatar count %d", count)
	}

	updates := make([]PositionUpdate, 0, min(int(count), dec.Remaining()/positionRecordMin))
	for i := int32(0); i < count; i++ {
		var u PositionUpdate
		var index, x, y int32

		if index, err = dec.ReadInt32(); err != nil {
			return updates, err
		}
		if x, err = dec.ReadInt32(); err != nil {
			return updates, err
		}
		if y, err = dec.ReadInt32(); err != nil {
			return updates, err
		}
		if u.Z, err = dec.ReadFloatString(); err != nil {
			return updates, err
		}
		if _, err = dec.ReadInt32(); err != nil { // head rotation
			return updates, err
		}
		if _, err = dec.ReadInt32(); err != nil { // body rotation
			return updates, err
		}
		if u.Action, err = dec.ReadString(); err != nil {
			return updates, err
		}
		u.Index, u.X, u.Y = int(index), int(x), int(y)
		updates = append(updates, u)
	}
	return updates, nil
}

// ParseUserRemove decodes the departure message. The index travels as a
// decimal string on the wire.
func ParseUserRemove(dec *protocol.Decoder) (int, error) {
	s, err := dec.ReadString()
	if err != nil {
		return 0, err
	}
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("room: non-numeric removal index %q", s)
	}
	return index, nil
}

// Chat is one spoken line in the room.
type Chat struct {
	Index   int // speaker's room index
	Message string
}

// ParseChat decodes a chat message.
func ParseChat(dec *protocol.Decoder) (Chat, error) {
	index, err := dec.ReadInt32()
	if err != nil {
		return Chat{}, err
	}
	msg, err := dec.ReadString()
	if err != nil {
		return Chat{}, err
	}
	return Chat{Index: int(index), Message: msg}, nil
}

// ParseFloodControl decodes the mute message and returns the remaining
// mute duration.
func ParseFloodControl(dec *protocol.Decoder) (time.Duration, error) {
	seconds, err := dec.ReadInt32()
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

// Profile is the logged-in account's own data, pushed after
// authentication.
type Profile struct {
	WebID             int
	Name              string
	Figure            string
	Gender            string
	RespectLeft       int
	LastAccess        string
	NameChangeAllowed bool
}

// ParseProfile decodes the own-profile message.
func ParseProfile(dec *protocol.Decoder) (Profile, error) {
	var p Profile
	webID, err := dec.ReadInt32()
	if err != nil {
		return p, err
	}
	p.WebID = int(webID)
	if p.Name, err = dec.ReadString(); err != nil {
		return p, err
	}
	if p.Figure, err = dec.ReadString(); err != nil {
		return p, err
	}
	if p.Gender, err = dec.ReadString(); err != nil {
		return p, err
	}
	if _, err = dec.ReadInt32(); err != nil { // custom data
		return p, err
	}
	if _, err = dec.ReadInt32(); err != nil { // real name
		return p, err
	}
	if _, err = dec.ReadBool(); err != nil { // direct mail
		return p, err
	}
	if _, err = dec.ReadInt32(); err != nil { // respect total
		return p, err
	}
	respectLeft, err := dec.ReadInt32()
	if err != nil {
		return p, err
	}
	p.RespectLeft = int(respectLeft)
	if _, err = dec.ReadBool(); err != nil { // stream publishing
		return p, err
	}
	if p.LastAccess, err = dec.ReadString(); err != nil {
		return p, err
	}
	if p.NameChangeAllowed, err = dec.ReadBool(); err != nil {
		return p, err
	}
	return p, nil
}

// ParseFlatCreated decodes the room-creation acknowledgement and returns
// the new room's ID.
func ParseFlatCreated(dec *protocol.Decoder) (int, error) {
	id, err := dec.ReadInt32()
	if err != nil {
		return 0, err
	}
	// Trailing room name, unused.
	return int(id), nil
}

// NavigatorRoom is one room in a navigator search result.
type NavigatorRoom struct {
	FlatID       int
	Name         string
	OwnerName    string
	UserCount    int
	MaxUserCount int
	Description  string
}

// Navigator result bitmask: extra blocks appended per room.
const (
	navFlagOfficial = 1 << 0
	navFlagGroup    = 1 << 1
	navFlagPromo    = 1 << 2
)

// ParseNavigatorResults decodes a navigator search result message into a
// flattened room list. The wire layout is hierarchical: search metadata,
// then category blocks, then rooms, each room optionally followed by
// extra blocks selected by a bitmask.
func ParseNavigatorResults(dec *protocol.Decoder) ([]NavigatorRoom, error) {
	if _, err := dec.ReadString(); err != nil { // search code
		return nil, err
	}
	if _, err := dec.ReadString(); err != nil { // search text
		return nil, err
	}
	blocks, err := dec.ReadInt32()
	if err != nil {
		return nil, err
	}

	var rooms []NavigatorRoom
	for b := int32(0); b < blocks; b++ {
		if _, err := dec.ReadString(); err != nil { // category code
			return rooms, err
		}
		if _, err := dec.ReadString(); err != nil { // category text
			return rooms, err
		}
		if _, err := dec.ReadInt32(); err != nil { // action allowed
			return rooms, err
		}
		if _, err := dec.ReadBool(); err != nil { // collapsed
			return rooms, err
		}
		if _, err := dec.ReadInt32(); err != nil { // view mode
			return rooms, err
		}

		count, err := dec.ReadInt32()
		if err != nil {
			return rooms, err
		}
		for i := int32(0); i < count; i++ {
			r, err := parseNavigatorRoom(dec)
			if err != nil {
				return rooms, err
			}
			rooms = append(rooms, r)
		}
	}
	return rooms, nil
}

func parseNavigatorRoom(dec *protocol.Decoder) (NavigatorRoom, error) {
	var r NavigatorRoom

	flatID, err := dec.ReadInt32()
	if err != nil {
		return r, err
	}
	r.FlatID = int(flatID)
	if r.Name, err = dec.ReadString(); err != nil {
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // owner id
		return r, err
	}
	if r.OwnerName, err = dec.ReadString(); err != nil {
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // door mode
		return r, err
	}
	users, err := dec.ReadInt32()
	if err != nil {
		return r, err
	}
	maxUsers, err := dec.ReadInt32()
	if err != nil {
		return r, err
	}
	r.UserCount, r.MaxUserCount = int(users), int(maxUsers)
	if r.Description, err = dec.ReadString(); err != nil {
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // trade mode
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // score
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // ranking
		return r, err
	}
	if _, err = dec.ReadInt32(); err != nil { // category id
		return r, err
	}

	tags, err := dec.ReadInt32()
	if err != nil {
		return r, err
	}
	for t := int32(0); t < tags; t++ {
		if _, err = dec.ReadString(); err != nil {
			return r, err
		}
	}

	mask, err := dec.ReadInt32()
	if err != nil {
		return r, err
	}
	if mask&navFlagOfficial != 0 {
		if _, err = dec.ReadString(); err != nil { // official image
			return r, err
		}
	}
	if mask&navFlagGroup != 0 {
		if _, err = dec.ReadInt32(); err != nil { // group id
			return r, err
		}
		if _, err = dec.ReadString(); err != nil { // group name
			return r, err
		}
		if _, err = dec.ReadString(); err != nil { // group badge
			return r, err
		}
	}
	if mask&navFlagPromo != 0 {
		if _, err = dec.ReadString(); err != nil { // promo name
			return r, err
		}
		if _, err = dec.ReadString(); err != nil { // promo description
			return r, err
		}
		if _, err = dec.ReadInt32(); err != nil { // promo minutes
			return r, err
		}
	}
	return r, nil
}
