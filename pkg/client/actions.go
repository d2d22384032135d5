package client

import (
	"fmt"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
	"github.com/bellhop-dev/bellhop/pkg/registry"
)

// requireActive gates user actions on the steady state. Handshake and
// keepalive traffic bypasses this; everything a caller drives goes
// through here.
func (s *Session) requireActive(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return newSessionError(s.id, op, fmt.Errorf("%w: session is %s", ErrNotConnected, s.state))
	}
	return nil
}

// Shout sends a room-wide chat line with the given bubble style.
func (s *Session) Shout(message string, style int32) error {
	if err := s.requireActive("shout"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindShout, func(enc *protocol.Encoder) {
		enc.WriteString(message)
		enc.WriteInt32(style)
	})
}

// Whisper sends a private chat line to a named user in the room. The
// wire format folds the recipient into the message string.
func (s *Session) Whisper(target, message string, style int32) error {
	if err := s.requireActive("whisper"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindWhisper, func(enc *protocol.Encoder) {
		enc.WriteString(target + " " + message)
		enc.WriteInt32(style)
	})
}

// Dance starts a dance animation; style 0 stops dancing.
func (s *Session) Dance(style int32) error {
	if err := s.requireActive("dance"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindDance, func(enc *protocol.Encoder) {
		enc.WriteInt32(style)
	})
}

// Sign raises a numbered sign above the avatar.
func (s *Session) Sign(sign int32) error {
	if err := s.requireActive("sign"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindSign, func(enc *protocol.Encoder) {
		enc.WriteInt32(sign)
	})
}

// Posture changes the avatar's stance (0 stand, 1 sit, 2 lay).
func (s *Session) Posture(posture int32) error {
	if err := s.requireActive("posture"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindPosture, func(enc *protocol.Encoder) {
		enc.WriteInt32(posture)
	})
}

// Respect gives a respect point to the user with the given web ID.
func (s *Session) Respect(webID int32) error {
	if err := s.requireActive("respect"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindRespectUser, func(enc *protocol.Encoder) {
		enc.WriteInt32(webID)
	})
}

// ReplenishRespect claims the daily respect-point refill.
func (s *Session) ReplenishRespect() error {
	if err := s.requireActive("replenish respect"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindReplenishRespect, func(enc *protocol.Encoder) {
		for _, v := range [...]int32{0, 0, 0, 2, 11, 1} {
			enc.WriteInt32(v)
		}
	})
}

// JoinRoom enters a room by ID. Local room state is reset immediately;
// the fresh floor plan and user list arrive through the read loop. The
// double room request mirrors the vendor client's entry sequence.
func (s *Session) JoinRoom(roomID int32) error {
	if err := s.requireActive("join room"); err != nil {
		return err
	}
	s.StopRandomWalk()
	s.clearPendingWalk()
	s.model.Reset()

	err := s.sendPacket(registry.KindGetGuestRoom, func(enc *protocol.Encoder) {
		enc.WriteInt32(roomID)
		enc.WriteInt32(0)
		enc.WriteInt32(1)
	})
	if err != nil {
		return err
	}
	err = s.sendPacket(registry.KindAvatarEffectSelect, func(enc *protocol.Encoder) {
		enc.WriteInt32(-1)
	})
	if err != nil {
		return err
	}
	if err := s.sendPacket(registry.KindGetInterstitial, nil); err != nil {
		return err
	}
	return s.sendPacket(registry.KindGetGuestRoom, func(enc *protocol.Encoder) {
		enc.WriteInt32(roomID)
		enc.WriteInt32(1)
		enc.WriteInt32(0)
	})
}

// QuitRoom leaves the current room and clears local room state.
func (s *Session) QuitRoom() error {
	if err := s.requireActive("quit room"); err != nil {
		return err
	}
	s.StopRandomWalk()
	s.clearPendingWalk()
	if err := s.sendPacket(registry.KindQuitRoom, nil); err != nil {
		return err
	}
	s.model.Reset()
	return nil
}

// SearchNavigator queries a navigator category. Results arrive as a
// NavigatorEvent.
func (s *Session) SearchNavigator(category, query string) error {
	if err := s.requireActive("navigator search"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindNavigatorSearch, func(enc *protocol.Encoder) {
		enc.WriteString(category)
		enc.WriteString(query)
	})
}

// SelectInitialRoom picks a starter room template during first login.
// The created room's ID arrives as a RoomCreatedEvent.
func (s *Session) SelectInitialRoom(templateID string) error {
	if err := s.requireActive("select initial room"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindSelectInitialRoom, func(enc *protocol.Encoder) {
		enc.WriteString(templateID)
	})
}

// UpdateHomeRoom sets the account's home room.
func (s *Session) UpdateHomeRoom(roomID int32) error {
	if err := s.requireActive("update home room"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindUpdateHomeRoom, func(enc *protocol.Encoder) {
		enc.WriteInt32(roomID)
	})
}

// UpdateFigure changes the avatar's look. Gender is "M" or "F"; figure
// is the dot-delimited figure string.
func (s *Session) UpdateFigure(gender, figure string) error {
	if err := s.requireActive("update figure"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindUpdateFigure, func(enc *protocol.Encoder) {
		enc.WriteString(gender)
		enc.WriteString(figure)
	})
}

// ChangeMotto updates the avatar's motto text.
func (s *Session) ChangeMotto(motto string) error {
	if err := s.requireActive("change motto"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindChangeMotto, func(enc *protocol.Encoder) {
		enc.WriteString(motto)
	})
}

// ChangeUsername requests a rename to the given name.
func (s *Session) ChangeUsername(name string) error {
	if err := s.requireActive("change username"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindChangeUsername, func(enc *protocol.Encoder) {
		enc.WriteString(name)
	})
}

// RequestFriend sends a friend request to a named user.
func (s *Session) RequestFriend(name string) error {
	if err := s.requireActive("request friend"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindRequestFriend, func(enc *protocol.Encoder) {
		enc.WriteString(name)
	})
}

// EnableEffect toggles an owned avatar effect on.
func (s *Session) EnableEffect(effectID int32) error {
	if err := s.requireActive("enable effect"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindAvatarEffectActivate, func(enc *protocol.Encoder) {
		enc.WriteInt32(effectID)
	})
}

// SelectEffect makes an activated effect the visible one; -1 clears it.
func (s *Session) SelectEffect(effectID int32) error {
	if err := s.requireActive("select effect"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindAvatarEffectSelect, func(enc *protocol.Encoder) {
		enc.WriteInt32(effectID)
	})
}

// PurchaseItem buys a catalog item.
func (s *Session) PurchaseItem(pageID, itemID int32, extra string, amount int32) error {
	if err := s.requireActive("purchase"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindPurchase, func(enc *protocol.Encoder) {
		enc.WriteInt32(pageID)
		enc.WriteInt32(itemID)
		enc.WriteString(extra)
		enc.WriteInt32(amount)
	})
}

// RequestRewardStatus asks for the state of the periodic reward.
func (s *Session) RequestRewardStatus() error {
	if err := s.requireActive("reward status"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindRewardStatus, nil)
}

// ClaimReward claims the periodic reward by slot number.
func (s *Session) ClaimReward(slot byte) error {
	if err := s.requireActive("claim reward"); err != nil {
		return err
	}
	return s.sendPacket(registry.KindRewardClaim, func(enc *protocol.Encoder) {
		enc.WriteByte(slot)
	})
}
