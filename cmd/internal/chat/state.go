package chat

// State is the connection lifecycle state of the client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticating
	StateAuthenticated
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ConnectionStatus is a point-in-time read of connection state.
// Consumers only read status; all mutation happens through the client API.
type ConnectionStatus struct {
	State           State  `json:"state"`
	IsConnected     bool   `json:"isConnected"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	CurrentRoomID   string `json:"currentRoomId,omitempty"`
}
