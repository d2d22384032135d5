package client

import (
	"time"

	"github.com/bellhop-dev/bellhop/pkg/room"
)

// Event is a typed notification surfaced to the caller on the session's
// event channel. Map and occupant traffic feeds the room model directly
// and does not appear here; everything the caller may want to react to
// does.
type Event interface {
	event()
}

// ChatEvent is a spoken line in the room.
type ChatEvent struct {
	room.ChatEvent
}

// ProfileEvent carries the bot's own profile, pushed after login.
type ProfileEvent struct {
	Profile room.Profile
}

// FloodEvent reports a server-imposed mute.
type FloodEvent struct {
	Remaining time.Duration
}

// DisconnectEvent reports the server's stated reason for closing the
// session.
type DisconnectEvent struct {
	Reason int
	Text   string
}

// RoomCreatedEvent acknowledges a successful room creation.
type RoomCreatedEvent struct {
	RoomID int
}

// NavigatorEvent carries navigator search results.
type NavigatorEvent struct {
	Rooms []room.NavigatorRoom
}

// RoomJoinedEvent fires when a floor plan lands, meaning the server has
// placed the bot inside a room.
type RoomJoinedEvent struct{}

func (ChatEvent) event()        {}
func (ProfileEvent) event()     {}
func (FloodEvent) event()       {}
func (DisconnectEvent) event()  {}
func (RoomCreatedEvent) event() {}
func (NavigatorEvent) event()   {}
func (RoomJoinedEvent) event()  {}

// Disconnect reason IDs carried by the server's disconnect message.
const (
	reasonJustBanned  = 1
	reasonStillBanned = 10
)

// disconnectReasons maps known disconnect reason IDs to descriptions.
var disconnectReasons = map[int]string{
	-2:  "maintenance break",
	0:   "logged out",
	1:   "banned (just banned)",
	10:  "banned (still banned)",
	2:   "concurrent login",
	11:  "concurrent login",
	13:  "concurrent login",
	18:  "concurrent login",
	12:  "hotel closed",
	19:  "hotel closed",
	20:  "incorrect password",
	112: "idle timeout",
	122: "incompatible client version",
}

func disconnectText(reason int) string {
	if s, ok := disconnectReasons[reason]; ok {
		return s
	}
	return "unknown"
}
