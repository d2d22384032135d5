// Package client drives one authenticated connection to the game
// server: dialing (direct or proxied), the signed key exchange, the
// identity sequence, and the steady-state read loop that feeds the room
// model and the caller's event channel.
//
// Each Session owns exactly one socket and one cipher pair. Sessions
// share nothing mutable; running N bots is running N sessions. Within a
// session the receive path is strictly ordered (frames are decrypted in
// arrival order, the keystream demands it) and sends are serialized by
// a per-session mutex for the same reason.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bellhop-dev/bellhop/pkg/crypto"
	"github.com/bellhop-dev/bellhop/pkg/protocol"
	"github.com/bellhop-dev/bellhop/pkg/registry"
	"github.com/bellhop-dev/bellhop/pkg/room"
)

const tracerName = "bellhop"

// Session is one connection lifecycle, from dial to termination. Create
// with NewSession, start with Connect, stop with Close. A Session is not
// reusable; a reconnect is a new Session.
type Session struct {
	cfg Config
	id  string
	log *slog.Logger
	reg *registry.Registry
	key *crypto.ServiceKey

	model *room.Model

	// mu serializes sends (outbound keystream position) and guards the
	// mutable connection state.
	mu        sync.Mutex
	conn      net.Conn
	pair      *crypto.Pair
	state     State
	termErr   error
	wasActive bool

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	start     time.Time
	pingSeq   int32

	walk walkState
}

// NewSession builds a session from configuration. No I/O happens until
// Connect.
func NewSession(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if cfg.Address == "" {
		return nil, errors.New("client: no server address")
	}
	key, err := crypto.ParseServiceKey(cfg.ServiceKeyModulus, cfg.ServiceKeyExponent)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := cfg.Logger.With("session", id)
	s := &Session{
		cfg:    cfg,
		id:     id,
		log:    log,
		reg:    cfg.Registry,
		key:    key,
		model:  room.NewModel(log),
		state:  Disconnected,
		events: make(chan Event, cfg.EventBuffer),
		done:   make(chan struct{}),
		start:  time.Now(),
	}
	s.walk.roomAware = true
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the session's room model.
func (s *Session) Room() *room.Model { return s.model }

// Events is the caller-facing notification channel. It is never closed;
// select against Done to detect termination.
func (s *Session) Events() <-chan Event { return s.events }

// Done is closed when the session reaches Terminated.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the fatal error that terminated the session, nil after a
// clean Close or while the session is still live.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

// Connect dials, runs the key exchange and identity sequence, and waits
// for the server's authentication acknowledgement. On success the
// session is Active with the read loop and keepalive running. Any
// failure terminates the session; there is no in-core retry.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Disconnected {
		state := s.state
		s.mu.Unlock()
		return newSessionError(s.id, "connect", fmt.Errorf("cannot connect from %s", state))
	}
	s.state = Connecting
	s.mu.Unlock()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.connect")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("server.address", s.cfg.Address),
	)

	fail := func(op string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		werr := newSessionError(s.id, op, err)
		s.terminate(werr)
		return werr
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	conn, err := dial(dialCtx, s.cfg)
	cancel()
	if err != nil {
		return fail("dial", fmt.Errorf("%w: %v", ErrConnectionLost, err))
	}

	s.mu.Lock()
	if s.state == Terminated { // Close raced the dial
		s.mu.Unlock()
		conn.Close()
		return ErrSessionTerminated
	}
	s.conn = conn
	s.state = KeyExchange
	s.mu.Unlock()

	// One deadline covers the exchange and the wait for the auth ack.
	conn.SetDeadline(time.Now().Add(s.cfg.HandshakeTimeout))
	reader := newFrameReader(conn, s.cfg.MaxFrameSize)

	pair, err := s.keyExchange(ctx, reader)
	if err != nil {
		handshakeFailures.Inc()
		return fail("key exchange", err)
	}
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
	reader.pair = pair

	if err := s.authenticate(ctx, reader); err != nil {
		authFailures.Inc()
		return fail("authenticate", err)
	}

	s.mu.Lock()
	s.state = Authenticated
	s.mu.Unlock()

	// Ask for our own profile; the read loop picks up the answer.
	if err := s.sendPacket(registry.KindInfoRetrieve, nil); err != nil {
		return fail("info retrieve", err)
	}

	conn.SetDeadline(time.Time{})
	reader.idle = s.cfg.ReadIdleTimeout

	s.mu.Lock()
	s.state = Active
	s.wasActive = true
	s.mu.Unlock()
	sessionsActive.Inc()
	s.log.Info("session active", "address", s.cfg.Address)

	go s.readLoop(reader)
	go s.keepalive()
	return nil
}

// keyExchange runs the signed Diffie-Hellman handshake over plaintext
// frames and returns the derived cipher pair.
func (s *Session) keyExchange(ctx context.Context, reader *frameReader) (*crypto.Pair, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "session.key_exchange")
	defer span.End()

	ex := crypto.NewExchange(s.key)
	if err := ex.Begin(); err != nil {
		return nil, err
	}

	ident := s.cfg.Identity
	err := s.sendPacket(registry.KindClientHello, func(enc *protocol.Encoder) {
		enc.WriteString(ident.ReleaseVersion)
		enc.WriteString(ident.ClientType)
		enc.WriteInt32(ident.PlatformID)
		enc.WriteInt32(ident.ClientVersion)
	})
	if err != nil {
		return nil, err
	}
	if err := s.sendPacket(registry.KindInitKeyExchange, nil); err != nil {
		return nil, err
	}

	for {
		pkt, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}

		switch s.reg.Classify(pkt.Header) {
		case registry.KindPing:
			if err := s.sendPacket(registry.KindPong, nil); err != nil {
				return nil, err
			}

		case registry.KindBanned:
			ex.Terminate()
			return nil, ErrBanned

		case registry.KindDisconnect:
			if err := s.handleDisconnect(pkt.Decoder()); err != nil {
				ex.Terminate()
				return nil, err
			}

		case registry.KindServerKeyExchange:
			dec := pkt.Decoder()
			primeHex, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			generatorHex, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			public, err := ex.HandleServerInit(primeHex, generatorHex)
			if err != nil {
				return nil, err
			}
			err = s.sendPacket(registry.KindCompleteKeyExchange, func(enc *protocol.Encoder) {
				enc.WriteString(public)
			})
			if err != nil {
				return nil, err
			}

		case registry.KindServerKeyComplete:
			dec := pkt.Decoder()
			serverPublicHex, err := dec.ReadString()
			if err != nil {
				return nil, err
			}
			inboundEnabled, err := dec.ReadBool()
			if err != nil {
				return nil, err
			}
			pair, err := ex.HandleServerComplete(serverPublicHex, inboundEnabled)
			if err != nil {
				return nil, err
			}
			s.log.Debug("key exchange established", "inbound_enciphered", inboundEnabled)
			return pair, nil

		default:
			// Pre-handshake server chatter; not ours to interpret.
		}
	}
}

// authenticate sends the identity sequence and waits for the server's
// acknowledgement.
func (s *Session) authenticate(ctx context.Context, reader *frameReader) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.authenticate")
	defer span.End()

	ticket, err := s.cfg.Tickets.Ticket(ctx)
	if err != nil {
		return fmt.Errorf("fetch ticket: %w", err)
	}

	ident := s.cfg.Identity
	err = s.sendPacket(registry.KindVersionCheck, func(enc *protocol.Encoder) {
		enc.WriteInt32(401)
		enc.WriteString("app:/")
		enc.WriteString(ident.ExternalVariablesURL)
	})
	if err != nil {
		return err
	}
	err = s.sendPacket(registry.KindUniqueID, func(enc *protocol.Encoder) {
		enc.WriteString(ident.MachineID)
		enc.WriteString(ident.Fingerprint)
		enc.WriteString(ident.Platform)
	})
	if err != nil {
		return err
	}
	elapsed := int32(time.Since(s.start) / time.Millisecond)
	err = s.sendPacket(registry.KindTicket, func(enc *protocol.Encoder) {
		enc.WriteString(ticket)
		enc.WriteInt32(elapsed)
	})
	if err != nil {
		return err
	}

	for {
		pkt, err := reader.Next()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionLost, err)
		}

		switch s.reg.Classify(pkt.Header) {
		case registry.KindAuthOK:
			s.log.Debug("authentication acknowledged")
			return nil

		case registry.KindPing:
			if err := s.sendPacket(registry.KindPong, nil); err != nil {
				return err
			}

		case registry.KindBanned:
			return ErrBanned

		case registry.KindFloodControl:
			if d, err := room.ParseFloodControl(pkt.Decoder()); err == nil {
				s.emit(FloodEvent{Remaining: d})
			}

		case registry.KindDisconnect:
			if err := s.handleDisconnect(pkt.Decoder()); err != nil {
				return err
			}
			return ErrAuthRejected

		default:
		}
	}
}

// handleDisconnect parses the server's disconnect message. Ban reasons
// are fatal as ErrBanned; everything else is surfaced as an event and
// left for the closing socket to finish.
func (s *Session) handleDisconnect(dec *protocol.Decoder) error {
	reason32, err := dec.ReadInt32()
	if err != nil {
		return nil
	}
	reason := int(reason32)
	text := disconnectText(reason)
	s.log.Warn("server disconnect", "reason", reason, "text", text)
	s.emit(DisconnectEvent{Reason: reason, Text: text})
	if reason == reasonJustBanned || reason == reasonStillBanned {
		return fmt.Errorf("%w: %s", ErrBanned, text)
	}
	return nil
}

// readLoop is the session's only frame consumer once Active. It owns
// the inbound keystream; nothing else may read the connection.
func (s *Session) readLoop(reader *frameReader) {
	for {
		pkt, err := reader.Next()
		if err != nil {
			if errors.Is(err, protocol.ErrOversizedFrame) {
				s.terminate(newSessionError(s.id, "read", err))
			} else if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.terminate(newSessionError(s.id, "read", ErrConnectionLost))
			} else {
				s.terminate(newSessionError(s.id, "read", fmt.Errorf("%w: %v", ErrConnectionLost, err)))
			}
			return
		}
		framesReceived.Inc()

		if err := s.dispatch(pkt); err != nil {
			s.terminate(newSessionError(s.id, "dispatch", err))
			return
		}
	}
}

// dispatch routes one classified frame. Room traffic mutates the model;
// chatter the caller may care about becomes an event. Parse anomalies in
// room messages are logged and swallowed, never fatal. A non-nil return
// terminates the session.
func (s *Session) dispatch(pkt *protocol.Packet) error {
	kind := s.reg.Classify(pkt.Header)
	dec := pkt.Decoder()

	switch kind {
	case registry.KindPing:
		return s.sendPacket(registry.KindPong, nil)

	case registry.KindLatencyResponse:
		// Round-trip acknowledgement of our keepalive; nothing to do.

	case registry.KindDisconnect:
		return s.handleDisconnect(dec)

	case registry.KindBanned:
		return ErrBanned

	case registry.KindFloodControl:
		d, err := room.ParseFloodControl(dec)
		if err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.emit(FloodEvent{Remaining: d})

	case registry.KindUsers:
		if err := s.model.ApplyUsers(dec); err != nil {
			s.warnParse(kind, err)
		}

	case registry.KindUserUpdate:
		if err := s.model.ApplyPositionUpdates(dec); err != nil {
			s.warnParse(kind, err)
		}

	case registry.KindUserRemove:
		if err := s.model.ApplyRemove(dec); err != nil {
			s.warnParse(kind, err)
		}

	case registry.KindChat:
		ev, err := s.model.ApplyChat(dec)
		if err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.emit(ChatEvent{ChatEvent: ev})

	case registry.KindFloorPlan:
		if err := s.model.ApplyFloorPlan(dec); err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.emit(RoomJoinedEvent{})
		s.flushPendingWalk()

	case registry.KindReliefMap:
		data, err := dec.ReadBytes(dec.Remaining())
		if err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.model.ApplyRelief(data)

	case registry.KindRoomEntryTile:
		if err := s.model.ApplyEntryTile(dec); err != nil {
			s.warnParse(kind, err)
		}

	case registry.KindUserObject:
		p, err := room.ParseProfile(dec)
		if err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.model.SetSelfName(p.Name)
		s.emit(ProfileEvent{Profile: p})

	case registry.KindFlatCreated:
		id, err := room.ParseFlatCreated(dec)
		if err != nil {
			s.warnParse(kind, err)
			return nil
		}
		s.emit(RoomCreatedEvent{RoomID: id})
		// Mirror the vendor client: a freshly created room becomes home.
		return s.UpdateHomeRoom(int32(id))

	case registry.KindNavigatorResults:
		rooms, err := room.ParseNavigatorResults(dec)
		if err != nil {
			s.warnParse(kind, err)
		}
		if len(rooms) > 0 {
			s.emit(NavigatorEvent{Rooms: rooms})
		}

	case registry.KindAuthOK:
		// Duplicate ack after login; harmless.

	case registry.KindUnknown:
		unknownHeaders.Inc()
		s.log.Debug("unknown header", "header", pkt.Header, "payload_len", len(pkt.Payload))

	default:
		s.log.Debug("unhandled kind", "kind", kind)
	}
	return nil
}

func (s *Session) warnParse(kind registry.Kind, err error) {
	s.log.Warn("malformed payload", "kind", kind, "err", err)
}

// emit hands an event to the caller without ever blocking the read
// loop: a full channel drops the event and counts it.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		eventsDropped.Inc()
		s.log.Debug("event dropped", "type", fmt.Sprintf("%T", ev))
	}
}

// sendPacket composes, encrypts, and writes one frame. Sends are
// serialized: the outbound keystream position must match write order.
func (s *Session) sendPacket(kind registry.Kind, compose func(*protocol.Encoder)) error {
	header, ok := s.reg.Header(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHeader, kind)
	}
	enc := protocol.NewEncoder()
	if compose != nil {
		compose(enc)
	}
	pkt := &protocol.Packet{Header: header, Payload: enc.Bytes()}
	frame := pkt.Encode()

	s.mu.Lock()
	if s.state == Terminated || s.conn == nil {
		s.mu.Unlock()
		return ErrSessionTerminated
	}
	if s.pair != nil {
		s.pair.EncryptOutbound(frame[protocol.LengthPrefixSize:])
	}
	_, err := s.conn.Write(frame)
	s.mu.Unlock()

	if err != nil {
		werr := fmt.Errorf("%w: %v", ErrConnectionLost, err)
		s.terminate(newSessionError(s.id, "send "+kind.String(), werr))
		return werr
	}
	framesSent.Inc()
	bytesSent.Add(float64(len(frame)))
	return nil
}

// keepalive spaces latency pings while the session lives; the server
// reaps clients that stop sending them.
func (s *Session) keepalive() {
	t := time.NewTicker(s.cfg.KeepaliveInterval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.mu.Lock()
			s.pingSeq++
			seq := s.pingSeq
			s.mu.Unlock()
			err := s.sendPacket(registry.KindLatencyPing, func(enc *protocol.Encoder) {
				enc.WriteInt32(seq)
			})
			if err != nil {
				return
			}
		}
	}
}

// Close terminates the session cleanly. Idempotent; the socket closes
// exactly once, and no frames are processed or sent afterwards.
func (s *Session) Close() error {
	s.terminate(nil)
	return nil
}

// terminate is the single path into the absorbing terminal state.
func (s *Session) terminate(err error) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = Terminated
		s.termErr = err
		conn := s.conn
		wasActive := s.wasActive
		s.mu.Unlock()

		s.StopRandomWalk()
		if conn != nil {
			conn.Close()
		}
		if wasActive {
			sessionsActive.Dec()
		}
		close(s.done)

		if err != nil {
			s.log.Warn("session terminated", "err", err)
		} else {
			s.log.Info("session closed")
		}
	})
}

// frameReader extracts frames from the connection in arrival order and
// decrypts them once a cipher pair is installed. Only one goroutine may
// call Next; it owns the inbound keystream position.
type frameReader struct {
	conn  net.Conn
	reasm *protocol.Reassembler
	pair  *crypto.Pair
	idle  time.Duration

	queue [][]byte
	buf   []byte
}

func newFrameReader(conn net.Conn, maxFrame int) *frameReader {
	return &frameReader{
		conn:  conn,
		reasm: protocol.NewReassembler(maxFrame),
		buf:   make([]byte, 4096),
	}
}

// Next returns the next complete frame.
func (r *frameReader) Next() (*protocol.Packet, error) {
	for len(r.queue) == 0 {
		if r.idle > 0 {
			r.conn.SetReadDeadline(time.Now().Add(r.idle))
		}
		n, err := r.conn.Read(r.buf)
		if n > 0 {
			bytesReceived.Add(float64(n))
			regions, ferr := r.reasm.Feed(r.buf[:n])
			r.queue = append(r.queue, regions...)
			if ferr != nil {
				return nil, ferr
			}
		}
		if err != nil {
			return nil, err
		}
	}

	region := r.queue[0]
	r.queue = r.queue[1:]
	if r.pair != nil {
		r.pair.DecryptInbound(region)
	}
	return protocol.ParseRegion(region)
}
