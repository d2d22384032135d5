package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for session-fatal conditions. Fatal errors move the
// session to Terminated; the core never retries on its own, retry policy
// belongs to the caller.
var (
	// ErrConnectionLost is returned when the transport fails or the
	// remote closes mid-session.
	ErrConnectionLost = errors.New("client: connection lost")

	// ErrAuthRejected is returned when the server never acknowledges the
	// identity sequence, or answers it with a disconnect.
	ErrAuthRejected = errors.New("client: authentication rejected")

	// ErrBanned is returned when the server signals an account or IP ban.
	ErrBanned = errors.New("client: banned")

	// ErrSessionTerminated is returned when an operation is attempted on
	// a terminated session.
	ErrSessionTerminated = errors.New("client: session terminated")

	// ErrNotConnected is returned when an operation requires an active
	// connection.
	ErrNotConnected = errors.New("client: not connected")

	// ErrTileBlocked is returned when a walk targets a tile the current
	// map marks as void or blocked.
	ErrTileBlocked = errors.New("client: destination tile blocked")

	// ErrNoHeader is returned when the registry defines no outgoing
	// header ID for a message kind.
	ErrNoHeader = errors.New("client: kind has no outgoing header")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // operation that failed
	Err       error  // underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("client: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

func newSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{SessionID: sessionID, Op: op, Err: err}
}
