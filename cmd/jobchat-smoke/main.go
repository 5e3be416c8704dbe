// Package main provides a CI-friendly smoke test against a live chat server.
//
// It validates:
//   - connect + authenticate with the supplied token
//   - confirmation-gated room join
//   - send -> fanout of the same message back to the sender
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"jobchat/cmd/internal/chat"
)

func main() {
	var (
		wsURL   = flag.String("url", "ws://127.0.0.1:9000/ws", "chat server WebSocket URL")
		token   = flag.String("token", "", "bearer token (empty connects anonymously)")
		roomID  = flag.String("room", "dev-room-1", "room to join")
		text    = flag.String("text", "smoke hello", "message text to send")
		timeout = flag.Duration("timeout", 10*time.Second, "per-step timeout")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	client := chat.New(log, chat.Config{
		ServerURL:   *wsURL,
		JoinTimeout: *timeout,
	}, nil, chat.NewStaticCredentialSource(*token), nil)
	defer client.Destroy()

	echo := make(chan chat.Message, 16)
	client.OnMessage(func(m chat.Message) {
		select {
		case echo <- m:
		default:
		}
	})

	client.Initialize()
	if err := waitStatus(*timeout, func(st chat.ConnectionStatus) bool { return st.IsConnected }, client); err != nil {
		fatalf("connect: %v", err)
	}
	fmt.Println("ok: connected")

	if *token == "" {
		fmt.Println("skip: join and send require -token")
		return
	}

	if err := waitStatus(*timeout, func(st chat.ConnectionStatus) bool { return st.IsAuthenticated }, client); err != nil {
		fatalf("authenticate: %v", err)
	}
	fmt.Println("ok: authenticated")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if !client.JoinRoom(ctx, *roomID) {
		fatalf("join %s: no confirmation within %v", *roomID, *timeout)
	}
	fmt.Printf("ok: joined %s\n", *roomID)

	if !client.SendMessage(*text, "") {
		fatalf("send rejected")
	}

	deadline := time.After(*timeout)
	for {
		select {
		case m := <-echo:
			if strings.TrimSpace(m.Body) == strings.TrimSpace(*text) {
				fmt.Printf("ok: fanout received (id=%s)\n", m.ID)
				return
			}
		case <-deadline:
			fatalf("fanout: message never came back within %v", *timeout)
		}
	}
}

func waitStatus(timeout time.Duration, cond func(chat.ConnectionStatus) bool, c *chat.Client) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond(c.Status()) {
			return nil
		}
		time.Sleep(25 * time.Millisecond)
	}
	return fmt.Errorf("timed out after %v (state=%s)", timeout, c.Status().State)
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "smoke: "+format+"\n", args...)
	os.Exit(1)
}
