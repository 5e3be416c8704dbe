package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const wsSubprotocol = "jobchat.v1"

type wsFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsTransport is the production Transport over a websocket connection.
// Inbound frames are JSON objects {"event": <name>, "data": <payload>}.
type wsTransport struct {
	log          *slog.Logger
	conn         *websocket.Conn
	writeTimeout time.Duration

	events chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWSDialer returns a Dialer that connects to the messaging server at url.
func NewWSDialer(log *slog.Logger, url string, writeTimeout time.Duration) Dialer {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return func(ctx context.Context) (Transport, error) {
		conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
			Subprotocols: []string{wsSubprotocol},
		})
		if err != nil {
			return nil, err
		}
		conn.SetReadLimit(maxFrameBytes)

		tctx, cancel := context.WithCancel(context.Background())
		t := &wsTransport{
			log:          log,
			conn:         conn,
			writeTimeout: writeTimeout,
			events:       make(chan Event, eventQueueSize),
			ctx:          tctx,
			cancel:       cancel,
		}
		go t.readLoop()
		return t, nil
	}
}

// Emit marshals and writes one named event frame.
func (t *wsTransport) Emit(parent context.Context, event string, data any) error {
	b, err := json.Marshal(wsFrame{Event: event, Data: data})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, t.writeTimeout)
	defer cancel()
	return t.conn.Write(ctx, websocket.MessageText, b)
}

// Events returns the inbound event stream. Closed when the connection drops.
func (t *wsTransport) Events() <-chan Event { return t.events }

// Close tears the connection down. Idempotent.
func (t *wsTransport) Close() error {
	t.closeOnce.Do(func() {
		t.cancel()
		_ = t.conn.Close(websocket.StatusNormalClosure, "bye")
	})
	return nil
}

func (t *wsTransport) readLoop() {
	defer close(t.events)

	for {
		mt, data, err := t.conn.Read(t.ctx)
		if err != nil {
			if t.ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				t.log.Info("transport.read.end", "err", err)
			}
			t.Close()
			return
		}
		if mt != websocket.MessageText && mt != websocket.MessageBinary {
			continue
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Name == "" {
			t.log.Warn("transport.frame.bad", "err", err)
			continue
		}

		select {
		case t.events <- ev:
		case <-t.ctx.Done():
			t.Close()
			return
		}
	}
}
