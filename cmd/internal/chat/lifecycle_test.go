package chat

import (
	"context"
	"testing"
	"time"
)

func TestLifecycleForegroundReconnectsWhenDown(t *testing.T) {
	d := &fakeDialer{}
	c := New(testLogger(), testConfig(), d.dial, NewStaticCredentialSource("t"), nil)
	defer c.Destroy()

	src := NewChannelLifecycleSource()
	bridge := NewLifecycleBridge(testLogger(), c, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	src.Notify(PhaseForeground)
	waitFor(t, "foreground dial", func() bool { return d.dialCount() == 1 && c.Status().IsConnected })
}

func TestLifecycleForegroundLeavesLiveConnectionAlone(t *testing.T) {
	c, d := newTestClient(t)

	src := NewChannelLifecycleSource()
	bridge := NewLifecycleBridge(testLogger(), c, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	src.Notify(PhaseForeground)
	src.Notify(PhaseForeground)
	time.Sleep(50 * time.Millisecond)

	if got := d.dialCount(); got != 1 {
		t.Fatalf("dials = %d, want 1 (no redial while connected)", got)
	}
}

func TestLifecycleBackgroundIsIgnored(t *testing.T) {
	c, d := newTestClient(t)

	src := NewChannelLifecycleSource()
	bridge := NewLifecycleBridge(testLogger(), c, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bridge.Run(ctx)

	src.Notify(PhaseBackground)
	time.Sleep(50 * time.Millisecond)

	if st := c.Status(); !st.IsConnected {
		t.Fatal("background transition tore down the connection")
	}
	if got := d.dialCount(); got != 1 {
		t.Fatalf("dials = %d, want 1", got)
	}
}

func TestLifecycleRunStopsOnSourceClose(t *testing.T) {
	d := &fakeDialer{}
	c := New(testLogger(), testConfig(), d.dial, NewStaticCredentialSource("t"), nil)
	defer c.Destroy()

	src := NewChannelLifecycleSource()
	bridge := NewLifecycleBridge(testLogger(), c, src)

	done := make(chan struct{})
	go func() {
		bridge.Run(context.Background())
		close(done)
	}()

	src.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after source close")
	}
}

func TestPhaseString(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{PhaseBackground, "background"},
		{PhaseForeground, "foreground"},
		{Phase(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.phase.String(); got != tc.want {
			t.Fatalf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.want)
		}
	}
}
