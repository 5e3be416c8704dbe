// Package chat implements the realtime chat client runtime: a single
// authenticated connection to the messaging server, room membership,
// message send/receive, and fan-out of inbound events to subscribers.
package chat

import "time"

// Wire event vocabulary. Outbound events are emitted by the client;
// inbound events are delivered by the messaging server over the same socket.
const (
	// Outbound.
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventSendMessage  = "send-message"

	// Inbound.
	EventAuthenticated   = "authenticated"
	EventAuthError       = "auth-error"
	EventForceDisconnect = "force-disconnect"
	EventJoinedRoom      = "joined-room"
	EventNewMessage      = "new-message"
	EventRoomUpdated     = "chat-room-updated"
	EventUnreadCount     = "total-unread-count-updated"
	EventUserJoined      = "user-joined"
	EventUserLeft        = "user-left"
	EventServerError     = "error"
)

// Message is the canonical chat message shape delivered to subscribers.
// It is immutable once received; ordering is authoritative by the server's
// created_at / delivery order, never by the client clock.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// RoomUpdate is the sidebar/list refresh signal for one room.
type RoomUpdate struct {
	RoomID      string    `json:"roomId"`
	LastMessage string    `json:"lastMessage,omitempty"`
	UnreadCount int       `json:"unreadCount"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Presence is a room presence change (user joined or left).
type Presence struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type sendMessagePayload struct {
	RoomID      string `json:"roomId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType,omitempty"`
}

type unreadCountPayload struct {
	TotalUnreadCount int `json:"totalUnreadCount"`
}

type authErrorPayload struct {
	Message string `json:"message"`
}

type forceDisconnectPayload struct {
	Reason string `json:"reason"`
}

type serverErrorPayload struct {
	Message string `json:"message"`
}
