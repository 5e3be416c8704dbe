package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Config contains the client's connection policy.
type Config struct {
	// ServerURL is the messaging server websocket URL. Ignored when a
	// custom Dialer is supplied.
	ServerURL string

	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	JoinTimeout    time.Duration

	// ReconnectDelay is the fixed delay between automatic reconnect
	// attempts; MaxReconnectAttempts caps consecutive failures before the
	// client stays down until an explicit Initialize/Reinitialize.
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = defaultJoinTimeout
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = defaultReconnectDelay
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	return c
}

// Client owns the process's single connection to the messaging server.
//
// Construct one per process, call Initialize to bring the connection up, and
// inject it into consumers. Consumers read state via Status and mutate it
// only through the public API; all writes happen under one mutex, so the
// observable state transitions form a single logical timeline.
type Client struct {
	log     *slog.Logger
	cfg     Config
	dial    Dialer
	creds   CredentialSource
	metrics *Metrics

	mu    sync.Mutex
	state State
	tr    Transport
	// sessionDone is closed by the read loop when the current transport
	// ends; join waiters select on it so they never outlive the connection.
	sessionDone chan struct{}
	connID      string

	connected     bool
	authenticated bool
	currentRoomID string

	reconnectAttempts int
	// noReconnect is set on server-forced eviction: reconnecting would race
	// the legitimate newer session.
	noReconnect bool
	destroyed   bool
	// gen invalidates in-flight connect/retry work from earlier
	// Initialize/Destroy cycles.
	gen int

	pendingJoins map[string]chan struct{}

	onMessage     *Registry[Message]
	onRoomUpdated *Registry[RoomUpdate]
	onUnreadCount *Registry[int]
	onUserJoined  *Registry[Presence]
	onUserLeft    *Registry[Presence]
}

// New constructs a client. A nil dialer gets the production websocket
// dialer for cfg.ServerURL; a nil metrics gets a private registry.
func New(log *slog.Logger, cfg Config, dial Dialer, creds CredentialSource, metrics *Metrics) *Client {
	cfg = cfg.withDefaults()
	if dial == nil {
		dial = NewWSDialer(log, cfg.ServerURL, cfg.WriteTimeout)
	}
	if creds == nil {
		creds = NewStaticCredentialSource("")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Client{
		log:           log,
		cfg:           cfg,
		dial:          dial,
		creds:         creds,
		metrics:       metrics,
		state:         StateDisconnected,
		pendingJoins:  make(map[string]chan struct{}),
		onMessage:     NewRegistry[Message](log, "message"),
		onRoomUpdated: NewRegistry[RoomUpdate](log, "room-updated"),
		onUnreadCount: NewRegistry[int](log, "unread-count"),
		onUserJoined:  NewRegistry[Presence](log, "user-joined"),
		onUserLeft:    NewRegistry[Presence](log, "user-left"),
	}
}

// Initialize tears down any existing transport and dials a new one.
// Idempotent; safe to call while a connection exists. The dial runs in the
// background, so Initialize returns immediately.
func (c *Client) Initialize() {
	c.mu.Lock()
	c.teardownLocked()
	c.destroyed = false
	c.noReconnect = false
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.log.Info("client.initialize")
	go c.connect(gen)
}

// Reinitialize is a full Destroy followed by Initialize: the reconnect
// counter and the current room reset, and all subscribers are dropped.
// Use it for a clean slate after prolonged disconnection or suspected
// desynchronization.
func (c *Client) Reinitialize() {
	c.Destroy()

	c.mu.Lock()
	c.reconnectAttempts = 0
	c.mu.Unlock()

	c.Initialize()
}

// Destroy disconnects the transport if present, clears all five listener
// registries, and resets the connection flags.
func (c *Client) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.gen++
	c.teardownLocked()
	c.mu.Unlock()

	c.onMessage.Clear()
	c.onRoomUpdated.Clear()
	c.onUnreadCount.Clear()
	c.onUserJoined.Clear()
	c.onUserLeft.Clear()

	c.log.Info("client.destroy")
}

// Status is a pure read of the connection state.
func (c *Client) Status() ConnectionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConnectionStatus{
		State:           c.state,
		IsConnected:     c.connected,
		IsAuthenticated: c.authenticated,
		CurrentRoomID:   c.currentRoomID,
	}
}

// OnMessage subscribes to inbound chat messages. Returns the unsubscribe
// function. Messages arrive in transport delivery order.
func (c *Client) OnMessage(fn func(Message)) func() { return c.onMessage.Subscribe(fn) }

// OnRoomUpdated subscribes to room summary refresh signals.
func (c *Client) OnRoomUpdated(fn func(RoomUpdate)) func() { return c.onRoomUpdated.Subscribe(fn) }

// OnUnreadCount subscribes to the total unread count. The value is a full
// replacement computed by the server; the client holds no counting logic.
func (c *Client) OnUnreadCount(fn func(int)) func() { return c.onUnreadCount.Subscribe(fn) }

// OnUserJoined subscribes to room presence arrivals.
func (c *Client) OnUserJoined(fn func(Presence)) func() { return c.onUserJoined.Subscribe(fn) }

// OnUserLeft subscribes to room presence departures.
func (c *Client) OnUserLeft(fn func(Presence)) func() { return c.onUserLeft.Subscribe(fn) }

// ---- connection lifecycle ----

func (c *Client) connect(gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	tr, err := c.dial(ctx)
	cancel()

	c.mu.Lock()
	if gen != c.gen || c.destroyed {
		c.mu.Unlock()
		if err == nil {
			_ = tr.Close()
		}
		return
	}

	if err != nil {
		c.reconnectAttempts++
		attempts := c.reconnectAttempts
		retry := !c.noReconnect && attempts < c.cfg.MaxReconnectAttempts
		if !retry {
			c.state = StateDisconnected
		}
		c.mu.Unlock()

		c.metrics.ConnectFailures.Inc()
		if retry {
			c.log.Warn("client.connect.fail", "attempt", attempts, "err", err)
			time.AfterFunc(c.cfg.ReconnectDelay, func() { c.retry(gen) })
		} else {
			c.log.Error("client.reconnect.exhausted", "attempts", attempts, "err", err)
		}
		return
	}

	connID := NewConnID(time.Now().UTC())
	done := make(chan struct{})
	c.tr = tr
	c.sessionDone = done
	c.connID = connID
	c.connected = true
	c.authenticated = false
	c.state = StateConnected
	// A successful connect resets the failure budget for the next outage.
	c.reconnectAttempts = 0
	c.mu.Unlock()

	c.metrics.Connects.Inc()
	c.metrics.Connected.Set(1)
	c.log.Info("client.connected", "conn_id", connID)

	c.authenticate(gen, tr)

	go c.readLoop(gen, tr, done)
}

func (c *Client) retry(gen int) {
	c.mu.Lock()
	ok := gen == c.gen && !c.destroyed && !c.noReconnect
	c.mu.Unlock()
	if !ok {
		return
	}
	c.connect(gen)
}

// authenticate re-reads the stored credential and presents it. It does not
// wait for the server's verdict: isAuthenticated stays false until the
// authenticated event arrives. A missing credential means a pre-login
// anonymous connection, which is not an error.
func (c *Client) authenticate(gen int, tr Transport) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteTimeout)
	defer cancel()

	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn("client.credential.fail", "err", err)
		return
	}
	if token == "" {
		c.log.Info("client.auth.anonymous")
		return
	}

	c.mu.Lock()
	if gen == c.gen && c.connected {
		c.state = StateAuthenticating
	}
	c.mu.Unlock()

	if err := tr.Emit(ctx, EventAuthenticate, token); err != nil {
		c.log.Warn("client.auth.emit.fail", "err", err)
	}
}

func (c *Client) readLoop(gen int, tr Transport, done chan struct{}) {
	for ev := range tr.Events() {
		c.handleEvent(gen, tr, ev)
	}
	close(done)
	c.handleDisconnect(gen)
}

// handleDisconnect runs when the transport drops on its own. Room
// membership does not survive a drop; the server forgets it too.
func (c *Client) handleDisconnect(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.destroyed {
		c.mu.Unlock()
		return
	}

	connID := c.connID
	c.tr = nil
	c.sessionDone = nil
	c.connID = ""
	c.connected = false
	c.authenticated = false
	c.currentRoomID = ""
	c.state = StateDisconnected
	c.pendingJoins = make(map[string]chan struct{})
	retry := !c.noReconnect
	c.mu.Unlock()

	c.metrics.Connected.Set(0)
	c.metrics.Authenticated.Set(0)

	if retry {
		c.log.Info("client.disconnected", "conn_id", connID, "reconnect_in", c.cfg.ReconnectDelay)
		time.AfterFunc(c.cfg.ReconnectDelay, func() { c.retry(gen) })
		return
	}
	c.log.Warn("client.disconnected.final", "conn_id", connID)
}

func (c *Client) teardownLocked() {
	if c.tr != nil {
		_ = c.tr.Close()
		c.tr = nil
	}
	c.sessionDone = nil
	c.connID = ""
	c.connected = false
	c.authenticated = false
	c.currentRoomID = ""
	c.state = StateDisconnected
	c.pendingJoins = make(map[string]chan struct{})

	c.metrics.Connected.Set(0)
	c.metrics.Authenticated.Set(0)
}

// ---- inbound events ----

func (c *Client) handleEvent(gen int, tr Transport, ev Event) {
	switch ev.Name {
	case EventAuthenticated:
		c.mu.Lock()
		if gen == c.gen && c.connected {
			c.authenticated = true
			c.state = StateAuthenticated
		}
		c.mu.Unlock()
		c.metrics.Authenticated.Set(1)
		c.log.Info("client.authenticated")

	case EventAuthError:
		var p authErrorPayload
		_ = json.Unmarshal(ev.Data, &p)
		// Not retried within this connection; the next connect cycle
		// presents a possibly refreshed credential.
		c.mu.Lock()
		if gen == c.gen && c.state == StateAuthenticating {
			c.state = StateConnected
		}
		c.mu.Unlock()
		c.log.Warn("client.auth.rejected", "reason", p.Message)

	case EventForceDisconnect:
		var p forceDisconnectPayload
		_ = json.Unmarshal(ev.Data, &p)
		c.mu.Lock()
		if gen == c.gen {
			c.noReconnect = true
		}
		c.mu.Unlock()
		c.metrics.Evictions.Inc()
		c.log.Warn("client.evicted", "reason", p.Reason)
		_ = tr.Close()

	case EventJoinedRoom:
		c.handleJoinedRoom(gen, ev.Data)

	case EventNewMessage:
		var msg Message
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			c.log.Warn("client.message.bad", "err", err)
			return
		}
		c.metrics.MessagesReceived.Inc()
		c.onMessage.Dispatch(msg)

	case EventRoomUpdated:
		var up RoomUpdate
		if err := json.Unmarshal(ev.Data, &up); err != nil {
			c.log.Warn("client.room_update.bad", "err", err)
			return
		}
		c.onRoomUpdated.Dispatch(up)

	case EventUnreadCount:
		var p unreadCountPayload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			c.log.Warn("client.unread.bad", "err", err)
			return
		}
		c.onUnreadCount.Dispatch(p.TotalUnreadCount)

	case EventUserJoined:
		var p Presence
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		c.onUserJoined.Dispatch(p)

	case EventUserLeft:
		var p Presence
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			return
		}
		c.onUserLeft.Dispatch(p)

	case EventServerError:
		var p serverErrorPayload
		_ = json.Unmarshal(ev.Data, &p)
		c.log.Warn("client.server.error", "message", p.Message)

	default:
		c.log.Debug("client.event.unknown", "event", ev.Name)
	}
}
