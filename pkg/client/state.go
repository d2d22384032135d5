package client

// State is a session's lifecycle phase. Transitions are strictly
// forward, except that every state may move directly to Terminated on a
// fatal error. Terminated is absorbing.
type State uint8

const (
	Disconnected State = iota
	Connecting
	KeyExchange
	Authenticated
	Active
	Terminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case KeyExchange:
		return "KeyExchange"
	case Authenticated:
		return "Authenticated"
	case Active:
		return "Active"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
