package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPrettyHandlerRendersAttrs(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(h)

	log.Info("chat.connected", "conn_id", "01ABC", "attempt", 2)

	line := sb.String()
	for _, want := range []string{"INF", "chat.connected", "conn_id=01ABC", "attempt=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestPrettyHandlerQuotesSpacedValues(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	log := slog.New(newPrettyHandler(&sb, nil))

	log.Warn("room.join.timeout", "reason", "no ack received")

	if !strings.Contains(sb.String(), `reason="no ack received"`) {
		t.Fatalf("line %q missing quoted value", sb.String())
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	log := slog.New(newPrettyHandler(&sb, nil)).WithGroup("conn").With("id", "x1")

	log.Info("ping", "rtt", 10*time.Millisecond)

	line := sb.String()
	if !strings.Contains(line, "conn.id=x1") {
		t.Fatalf("line %q missing grouped attr", line)
	}
	if !strings.Contains(line, "conn.rtt=10ms") {
		t.Fatalf("line %q missing duration attr", line)
	}
}

func TestPrettyHandlerLevelGate(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error disabled at warn level")
	}
}
