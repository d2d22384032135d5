// Package registry maps wire header identifiers to logical message kinds.
//
// Header IDs are deployment-specific: every service revision reshuffles
// them, so the engine never hardcodes an ID. A Registry is built from
// configuration before the session starts and is read-only afterwards.
// The two directions are independent ID spaces; the same numeric ID may
// mean different things inbound and outbound.
package registry

import (
	"fmt"
)

// Kind is a logical message kind, independent of the numeric header ID a
// given deployment assigns to it.
type Kind uint8

const (
	// KindUnknown is the classification for any inbound header ID the
	// registry has no mapping for. Unknown traffic is tolerated, never
	// fatal.
	KindUnknown Kind = iota

	// Incoming kinds.
	KindServerKeyExchange
	KindServerKeyComplete
	KindAuthOK
	KindPing
	KindLatencyResponse
	KindDisconnect
	KindBanned
	KindFloodControl
	KindUsers
	KindUserRemove
	KindUserUpdate
	KindChat
	KindFloorPlan
	KindReliefMap
	KindRoomEntryTile
	KindUserObject
	KindFlatCreated
	KindNavigatorResults

	// Outgoing kinds.
	KindClientHello
	KindInitKeyExchange
	KindCompleteKeyExchange
	KindVersionCheck
	KindUniqueID
	KindTicket
	KindInfoRetrieve
	KindPong
	KindLatencyPing
	KindWalk
	KindShout
	KindWhisper
	KindDance
	KindSign
	KindPosture
	KindRespectUser
	KindReplenishRespect
	KindGetGuestRoom
	KindGetInterstitial
	KindQuitRoom
	KindSelectInitialRoom
	KindUpdateHomeRoom
	KindNavigatorSearch
	KindUpdateFigure
	KindChangeMotto
	KindChangeUsername
	KindRequestFriend
	KindAvatarEffectActivate
	KindAvatarEffectSelect
	KindPurchase
	KindRewardStatus
	KindRewardClaim

	kindCount // sentinel, keep last
)

// kindNames holds the canonical configuration key for each kind. The
// same names appear in the TOML tables and in log output.
var kindNames = [kindCount]string{
	KindUnknown: "unknown",

	KindServerKeyExchange: "server_key_exchange",
	KindServerKeyComplete: "server_key_complete",
	KindAuthOK:            "auth_ok",
	KindPing:              "ping",
	KindLatencyResponse:   "latency_response",
	KindDisconnect:        "disconnect",
	KindBanned:            "banned",
	KindFloodControl:      "flood_control",
	KindUsers:             "users",
	KindUserRemove:        "user_remove",
	KindUserUpdate:        "user_update",
	KindChat:              "chat",
	KindFloorPlan:         "floor_plan",
	KindReliefMap:         "relief_map",
	KindRoomEntryTile:     "room_entry_tile",
	KindUserObject:        "user_object",
	KindFlatCreated:       "flat_created",
	KindNavigatorResults:  "navigator_results",

	KindClientHello:          "client_hello",
	KindInitKeyExchange:      "init_key_exchange",
	KindCompleteKeyExchange:  "complete_key_exchange",
	KindVersionCheck:         "version_check",
	KindUniqueID:             "unique_id",
	KindTicket:               "ticket",
	KindInfoRetrieve:         "info_retrieve",
	KindPong:                 "pong",
	KindLatencyPing:          "latency_ping",
	KindWalk:                 "walk",
	KindShout:                "shout",
	KindWhisper:              "whisper",
	KindDance:                "dance",
	KindSign:                 "sign",
	KindPosture:              "posture",
	KindRespectUser:          "respect_user",
	KindReplenishRespect:     "replenish_respect",
	KindGetGuestRoom:         "get_guest_room",
	KindGetInterstitial:      "get_interstitial",
	KindQuitRoom:             "quit_room",
	KindSelectInitialRoom:    "select_initial_room",
	KindUpdateHomeRoom:       "update_home_room",
	KindNavigatorSearch:      "navigator_search",
	KindUpdateFigure:         "update_figure",
	KindChangeMotto:          "change_motto",
	KindChangeUsername:       "change_username",
	KindRequestFriend:        "request_friend",
	KindAvatarEffectActivate: "avatar_effect_activate",
	KindAvatarEffectSelect:   "avatar_effect_select",
	KindPurchase:             "purchase",
	KindRewardStatus:         "reward_status",
	KindRewardClaim:          "reward_claim",
}

// kindByName is the inverse of kindNames, built once at init.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, name := range kindNames {
		if name != "" && Kind(k) != KindUnknown {
			m[name] = Kind(k)
		}
	}
	return m
}()

// String returns the kind's canonical configuration name.
func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindByName resolves a configuration key to its Kind. The second return
// is false for names the enumeration does not contain.
func KindByName(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// Registry is a bidirectional header-ID table for one deployment. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	decode map[uint16]Kind
	encode map[Kind]uint16
}

// New builds a registry from explicit kind→ID maps. Incoming IDs feed the
// decode direction, outgoing IDs the encode direction. Two incoming kinds
// sharing an ID is a configuration error.
func New(incoming, outgoing map[Kind]uint16) (*Registry, error) {
	r := &Registry{
		decode: make(map[uint16]Kind, len(incoming)),
		encode: make(map[Kind]uint16, len(outgoing)),
	}
	for kind, id := range incoming {
		if kind == KindUnknown || kind >= kindCount {
			return nil, fmt.Errorf("registry: invalid incoming kind %d", kind)
		}
		if prev, dup := r.decode[id]; dup {
			return nil, fmt.Errorf("registry: incoming header %d mapped to both %s and %s", id, prev, kind)
		}
		r.decode[id] = kind
	}
	for kind, id := range outgoing {
		if kind == KindUnknown || kind >= kindCount {
			return nil, fmt.Errorf("registry: invalid outgoing kind %d", kind)
		}
		r.encode[kind] = id
	}
	return r, nil
}

// Classify resolves an inbound header ID. Unmapped IDs classify as
// KindUnknown.
func (r *Registry) Classify(header uint16) Kind {
	if kind, ok := r.decode[header]; ok {
		return kind
	}
	return KindUnknown
}

// Header resolves an outgoing kind to its wire header ID. The second
// return is false when the deployment defines no ID for the kind.
func (r *Registry) Header(kind Kind) (uint16, bool) {
	id, ok := r.encode[kind]
	return id, ok
}

// Incoming returns the number of decode mappings.
func (r *Registry) Incoming() int { return len(r.decode) }

// Outgoing returns the number of encode mappings.
func (r *Registry) Outgoing() int { return len(r.encode) }
