package chat

import "time"

// Timeout and retry defaults. All are overridable through Config.
const (
	// Max bytes per websocket frame read (hard limit).
	maxFrameBytes = 64 << 10 // 64 KiB

	// Inbound event queue depth per connection.
	eventQueueSize = 256

	defaultConnectTimeout = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
	defaultJoinTimeout    = 5 * time.Second

	// Fixed delay between automatic reconnect attempts.
	defaultReconnectDelay = 3 * time.Second

	// Automatic reconnects stop after this many consecutive failures;
	// an explicit Initialize/Reinitialize is required afterwards.
	defaultMaxReconnectAttempts = 5
)
