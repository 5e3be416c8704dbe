package chat

import (
	"context"
	"log/slog"
)

// Phase is a coarse host process lifecycle signal.
type Phase int

const (
	PhaseBackground Phase = iota
	PhaseForeground
)

func (p Phase) String() string {
	switch p {
	case PhaseBackground:
		return "background"
	case PhaseForeground:
		return "foreground"
	default:
		return "unknown"
	}
}

// LifecycleSource delivers phase transitions. The channel closes when the
// source shuts down.
type LifecycleSource interface {
	Phases() <-chan Phase
}

// LifecycleBridge watches phase transitions and revives a dead connection
// on return to foreground. It only acts when the client is fully
// disconnected: a live or in-flight connection is left alone, and nothing
// is torn down on background.
type LifecycleBridge struct {
	log    *slog.Logger
	client *Client
	src    LifecycleSource
}

func NewLifecycleBridge(log *slog.Logger, client *Client, src LifecycleSource) *LifecycleBridge {
	return &LifecycleBridge{log: log, client: client, src: src}
}

// Run consumes phase transitions until ctx ends or the source closes.
func (b *LifecycleBridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case phase, ok := <-b.src.Phases():
			if !ok {
				return
			}
			if phase != PhaseForeground {
				continue
			}
			st := b.client.Status()
			if st.IsConnected || st.State == StateConnecting {
				continue
			}
			b.log.Info("lifecycle.foreground.reconnect")
			b.client.Initialize()
		}
	}
}

// ChannelLifecycleSource is a LifecycleSource fed programmatically, for
// embedding hosts and tests.
type ChannelLifecycleSource struct {
	ch chan Phase
}

func NewChannelLifecycleSource() *ChannelLifecycleSource {
	return &ChannelLifecycleSource{ch: make(chan Phase, 8)}
}

func (s *ChannelLifecycleSource) Phases() <-chan Phase { return s.ch }

// Notify records a phase transition. Drops the signal if the buffer is
// full rather than blocking the host.
func (s *ChannelLifecycleSource) Notify(p Phase) {
	select {
	case s.ch <- p:
	default:
	}
}

// Close ends the stream.
func (s *ChannelLifecycleSource) Close() { close(s.ch) }
