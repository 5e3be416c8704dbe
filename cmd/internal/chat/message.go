package chat

import (
	"context"
	"strings"
)

// SendMessage emits a chat message for the current room. All preconditions
// are checked before any traffic: the client must be connected,
// authenticated, in a room, and the trimmed text must be non-empty. A
// false return means nothing reached the wire; there is no local echo,
// the message appears when the server fans it back.
func (c *Client) SendMessage(text, messageType string) bool {
	body := strings.TrimSpace(text)

	c.mu.Lock()
	switch {
	case !c.connected || c.tr == nil:
		c.mu.Unlock()
		c.log.Warn("message.send.offline")
		return false
	case !c.authenticated:
		c.mu.Unlock()
		c.log.Warn("message.send.unauthenticated")
		return false
	case c.currentRoomID == "":
		c.mu.Unlock()
		c.log.Warn("message.send.no_room")
		return false
	case body == "":
		c.mu.Unlock()
		return false
	}
	tr := c.tr
	roomID := c.currentRoomID
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteTimeout)
	defer cancel()

	payload := sendMessagePayload{RoomID: roomID, Message: body, MessageType: messageType}
	if err := tr.Emit(ctx, EventSendMessage, payload); err != nil {
		c.log.Warn("message.send.emit.fail", "room_id", roomID, "err", err)
		return false
	}
	c.metrics.MessagesSent.Inc()
	return true
}
