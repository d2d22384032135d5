package client

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bellhop-dev/bellhop/pkg/protocol"
	"github.com/bellhop-dev/bellhop/pkg/registry"
	"github.com/bellhop-dev/bellhop/pkg/room"
)

// blindWalkSpan is the coordinate range random walks draw from when no
// floor plan is available and room awareness is off.
const blindWalkSpan = 50

// walkState holds movement plumbing. It has its own lock so the random
// walk timer never contends with the send path's mutex.
type walkState struct {
	mu        sync.Mutex
	roomAware bool

	// At most one destination is parked while the floor plan is still
	// in flight; a newer request replaces it.
	pending  bool
	pendingX int
	pendingY int

	stopRandom chan struct{}
}

// SetWalkRoomAware toggles destination legality checks. Room-aware mode
// (the default) refuses unwalkable targets and confines random walks to
// the known floor plan; with it off, coordinates go to the server as
// given and the server adjudicates.
func (s *Session) SetWalkRoomAware(aware bool) {
	s.walk.mu.Lock()
	s.walk.roomAware = aware
	s.walk.mu.Unlock()
}

// Walk requests a move to the given tile. With room awareness on and a
// floor plan loaded, unwalkable destinations fail with ErrTileBlocked.
// Before the floor plan arrives the destination is parked and issued
// once the plan lands; a second Walk in that window replaces the first.
// There is no client-side pathfinding: one command per destination, the
// server walks the avatar.
func (s *Session) Walk(x, y int) error {
	if err := s.requireActive("walk"); err != nil {
		return err
	}

	s.walk.mu.Lock()
	aware := s.walk.roomAware
	if aware && !s.model.MapValid() {
		s.walk.pending = true
		s.walk.pendingX, s.walk.pendingY = x, y
		s.walk.mu.Unlock()
		s.log.Debug("walk queued until floor plan", "x", x, "y", y)
		return nil
	}
	s.walk.mu.Unlock()

	if aware && !s.model.Walkable(x, y) {
		return newSessionError(s.id, "walk", fmt.Errorf("%w: (%d,%d)", ErrTileBlocked, x, y))
	}
	return s.issueWalk(x, y)
}

// issueWalk sends the move command and records the optimistic position.
func (s *Session) issueWalk(x, y int) error {
	err := s.sendPacket(registry.KindWalk, func(enc *protocol.Encoder) {
		enc.WriteInt32(int32(x))
		enc.WriteInt32(int32(y))
	})
	if err != nil {
		return err
	}
	s.model.NoteMove(x, y)
	walksIssued.Inc()
	return nil
}

// flushPendingWalk issues the parked destination once a floor plan is
// available. Called from the read loop on floor plan arrival. A parked
// destination that turned out unwalkable is dropped with a log line;
// there is no caller left to return the error to.
func (s *Session) flushPendingWalk() {
	s.walk.mu.Lock()
	if !s.walk.pending {
		s.walk.mu.Unlock()
		return
	}
	x, y := s.walk.pendingX, s.walk.pendingY
	s.walk.pending = false
	aware := s.walk.roomAware
	s.walk.mu.Unlock()

	if aware && !s.model.Walkable(x, y) {
		s.log.Warn("queued walk target not walkable, dropped", "x", x, "y", y)
		return
	}
	if err := s.issueWalk(x, y); err != nil {
		s.log.Warn("queued walk failed", "x", x, "y", y, "err", err)
	}
}

func (s *Session) clearPendingWalk() {
	s.walk.mu.Lock()
	s.walk.pending = false
	s.walk.mu.Unlock()
}

// StartRandomWalk moves to a random destination every interval. A
// session runs at most one random walk; starting again restarts the
// timer with the new interval. Room-aware mode picks uniformly among
// walkable tiles other than the current one; otherwise coordinates are
// drawn blind from a fixed span and left to the server.
func (s *Session) StartRandomWalk(interval time.Duration) error {
	if err := s.requireActive("random walk"); err != nil {
		return err
	}
	if interval <= 0 {
		return newSessionError(s.id, "random walk", fmt.Errorf("interval must be positive, got %v", interval))
	}

	stop := make(chan struct{})
	s.walk.mu.Lock()
	if s.walk.stopRandom != nil {
		close(s.walk.stopRandom)
	}
	s.walk.stopRandom = stop
	s.walk.mu.Unlock()

	go s.randomWalkLoop(interval, stop)
	return nil
}

// StopRandomWalk cancels the running random walk, if any.
func (s *Session) StopRandomWalk() {
	s.walk.mu.Lock()
	if s.walk.stopRandom != nil {
		close(s.walk.stopRandom)
		s.walk.stopRandom = nil
	}
	s.walk.mu.Unlock()
}

func (s *Session) randomWalkLoop(interval time.Duration, stop chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-t.C:
			s.randomStep()
		}
	}
}

// randomStep issues one random move. Misses (no map yet, empty room,
// transient send failure) are skipped; the next tick tries again.
func (s *Session) randomStep() {
	s.walk.mu.Lock()
	aware := s.walk.roomAware
	s.walk.mu.Unlock()

	if !aware || !s.model.MapValid() {
		if aware {
			return
		}
		_ = s.issueWalk(rand.Intn(blindWalkSpan), rand.Intn(blindWalkSpan))
		return
	}

	tiles := s.model.WalkableTiles()
	sx, sy, known := s.model.Position()
	if known {
		tiles = excludeTile(tiles, sx, sy)
	}
	if len(tiles) == 0 {
		return
	}
	dst := tiles[rand.Intn(len(tiles))]
	_ = s.issueWalk(dst.X, dst.Y)
}

func excludeTile(tiles []room.Tile, x, y int) []room.Tile {
	out := tiles[:0]
	for _, t := range tiles {
		if t.X == x && t.Y == y {
			continue
		}
		out = append(out, t)
	}
	return out
}
