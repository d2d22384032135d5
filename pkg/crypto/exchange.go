package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Exchange errors.
var (
	// ErrHandshakeRejected is returned when a server key-exchange value
	// fails verification against the known service key. The condition is
	// fatal: the exchange terminates and a retry means a fresh session.
	ErrHandshakeRejected = errors.New("crypto: handshake rejected")

	// ErrExchangeState is returned when an exchange operation arrives in
	// the wrong state.
	ErrExchangeState = errors.New("crypto: unexpected exchange state")
)

// ExchangeState is the cipher session's handshake state.
type ExchangeState uint8

const (
	ExchangeIdle ExchangeState = iota
	ExchangeAwaitingServerKey
	ExchangeAwaitingVerification
	ExchangeEstablished
	ExchangeTerminated
)

// String returns the string representation of the exchange state.
func (s ExchangeState) String() string {
	switch s {
	case ExchangeIdle:
		return "Idle"
	case ExchangeAwaitingServerKey:
		return "AwaitingServerKey"
	case ExchangeAwaitingVerification:
		return "AwaitingVerification"
	case ExchangeEstablished:
		return "Established"
	case ExchangeTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// clientPrivateBits is the bit width of the client's Diffie-Hellman
// private value, matching the vendor client.
const clientPrivateBits = 120

// Exchange drives the signed Diffie-Hellman key exchange from the client
// side and derives the session's directional ciphers from the shared
// secret. Transitions are strictly forward:
//
//	Idle → AwaitingServerKey → AwaitingVerification → Established
//
// with any state able to move to Terminated on a fatal error. Terminated
// is absorbing. An Exchange belongs to exactly one session.
type Exchange struct {
	state ExchangeState
	key   *ServiceKey

	p, g    *big.Int
	private *big.Int
}

// NewExchange creates an exchange bound to the known service public key.
func NewExchange(key *ServiceKey) *Exchange {
	return &Exchange{state: ExchangeIdle, key: key}
}

// State returns the current exchange state.
func (e *Exchange) State() ExchangeState {
	return e.state
}

// Established reports whether the directional ciphers have been derived.
func (e *Exchange) Established() bool {
	return e.state == ExchangeEstablished
}

// Begin marks the exchange as waiting for the server's signed parameters.
// The caller sends the init frame; the exchange only tracks state.
func (e *Exchange) Begin() error {
	if e.state != ExchangeIdle {
		return fmt.Errorf("%w: Begin in %s", ErrExchangeState, e.state)
	}
	e.state = ExchangeAwaitingServerKey
	return nil
}

// HandleServerInit processes the server's signed prime and generator,
// generates the client's private value, and returns the client's public
// value padded and encrypted for the wire. Verification failure is fatal.
func (e *Exchange) HandleServerInit(primeHex, generatorHex string) (string, error) {
	if e.state != ExchangeAwaitingServerKey {
		return "", fmt.Errorf("%w: HandleServerInit in %s", ErrExchangeState, e.state)
	}

	p, err := e.key.VerifyAndUnpad(primeHex)
	if err != nil {
		e.state = ExchangeTerminated
		return "", fmt.Errorf("%w: prime: %v", ErrHandshakeRejected, err)
	}
	g, err := e.key.VerifyAndUnpad(generatorHex)
	if err != nil {
		e.state = ExchangeTerminated
		return "", fmt.Errorf("%w: generator: %v", ErrHandshakeRejected, err)
	}
	if p.Sign() <= 0 || g.Sign() <= 0 {
		e.state = ExchangeTerminated
		return "", fmt.Errorf("%w: non-positive parameters", ErrHandshakeRejected)
	}

	private, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), clientPrivateBits))
	if err != nil {
		e.state = ExchangeTerminated
		return "", err
	}

	public := new(big.Int).Exp(g, private, p)
	wire, err := e.key.PadAndEncrypt([]byte(public.String()))
	if err != nil {
		e.state = ExchangeTerminated
		return "", err
	}

	e.p, e.g, e.private = p, g, private
	e.state = ExchangeAwaitingVerification
	return wire, nil
}

// HandleServerComplete processes the server's signed public value and
// derives the session cipher pair from the shared secret. inboundEnabled
// mirrors the server's flag for whether server→client traffic will be
// enciphered; outbound always is.
func (e *Exchange) HandleServerComplete(serverPublicHex string, inboundEnabled bool) (*Pair, error) {
	if e.state != ExchangeAwaitingVerification {
		return nil, fmt.Errorf("%w: HandleServerComplete in %s", ErrExchangeState, e.state)
	}

	serverPublic, err := e.key.VerifyAndUnpad(serverPublicHex)
	if err != nil {
		e.state = ExchangeTerminated
		return nil, fmt.Errorf("%w: server public value: %v", ErrHandshakeRejected, err)
	}

	shared := new(big.Int).Exp(serverPublic, e.private, e.p)
	secret := shared.Bytes()
	if len(secret) == 0 {
		secret = []byte{0x00}
	}

	pair := &Pair{}
	if pair.Out, err = NewOutbound(secret); err != nil {
		e.state = ExchangeTerminated
		return nil, err
	}
	if inboundEnabled {
		if pair.In, err = NewInbound(secret); err != nil {
			e.state = ExchangeTerminated
			return nil, err
		}
	}

	e.private = nil // one-shot; the secret lives only in the ciphers
	e.state = ExchangeEstablished
	return pair, nil
}

// Terminate moves the exchange to its absorbing terminal state.
func (e *Exchange) Terminate() {
	e.state = ExchangeTerminated
}
