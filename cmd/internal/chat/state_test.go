package chat

import (
	"testing"
	"time"
)

func TestStateString(t *testing.T) {
	cases := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateAuthenticating, "authenticating"},
		{StateAuthenticated, "authenticated"},
		{State(42), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Fatalf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestNewConnID(t *testing.T) {
	now := time.Now().UTC()
	a := NewConnID(now)
	b := NewConnID(now)
	if a == "" || b == "" {
		t.Fatal("empty conn id")
	}
	if a == b {
		t.Fatalf("conn ids collide: %s", a)
	}
	if len(a) != 26 {
		t.Fatalf("conn id length = %d, want 26", len(a))
	}
}
