package chat

import (
	"context"
	"encoding/json"
	"time"
)

// JoinRoom asks the server to join roomID and waits for the matching
// confirmation, up to the configured join timeout. Membership is recorded
// only on confirmation, so a false return means the client is not in the
// room and a later retry is clean.
//
// Joining while in another room emits the leave for the old room first.
// Joining the room the client is already in returns true without any
// traffic.
func (c *Client) JoinRoom(ctx context.Context, roomID string) bool {
	if roomID == "" {
		return false
	}

	c.mu.Lock()
	if !c.connected || !c.authenticated || c.tr == nil {
		c.mu.Unlock()
		c.log.Warn("room.join.precondition", "room_id", roomID)
		return false
	}
	if c.currentRoomID == roomID {
		c.mu.Unlock()
		return true
	}
	tr := c.tr
	done := c.sessionDone
	prev := c.currentRoomID
	c.currentRoomID = ""

	ack, waiting := c.pendingJoins[roomID]
	if !waiting {
		ack = make(chan struct{})
		c.pendingJoins[roomID] = ack
	}
	c.mu.Unlock()

	emitCtx, cancel := context.WithTimeout(ctx, c.cfg.WriteTimeout)
	defer cancel()

	if prev != "" {
		if err := tr.Emit(emitCtx, EventLeaveRoom, prev); err != nil {
			c.log.Warn("room.leave.emit.fail", "room_id", prev, "err", err)
		}
	}

	if !waiting {
		if err := tr.Emit(emitCtx, EventJoinRoom, joinRoomPayload{RoomID: roomID}); err != nil {
			c.log.Warn("room.join.emit.fail", "room_id", roomID, "err", err)
			return c.resolvePendingJoin(roomID, ack)
		}
	}

	timer := time.NewTimer(c.cfg.JoinTimeout)
	defer timer.Stop()

	select {
	case <-ack:
		return true
	case <-timer.C:
		// The confirmation may have landed between the timer firing and
		// this branch running.
		if c.resolvePendingJoin(roomID, ack) {
			return true
		}
		c.metrics.JoinTimeouts.Inc()
		c.log.Warn("room.join.timeout", "room_id", roomID)
		return false
	case <-done:
		c.log.Warn("room.join.disconnected", "room_id", roomID)
		return false
	case <-ctx.Done():
		_ = c.resolvePendingJoin(roomID, ack)
		return false
	}
}

// LeaveRoom emits the leave request and clears local membership
// immediately. Fire and forget: the server sends no confirmation. A no-op
// when no room is current. An empty roomID leaves the current room.
func (c *Client) LeaveRoom(roomID string) {
	c.mu.Lock()
	if !c.connected || c.tr == nil || c.currentRoomID == "" {
		c.mu.Unlock()
		return
	}
	tr := c.tr
	if roomID == "" {
		roomID = c.currentRoomID
	}
	c.currentRoomID = ""
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.WriteTimeout)
	defer cancel()

	if err := tr.Emit(ctx, EventLeaveRoom, roomID); err != nil {
		c.log.Warn("room.leave.emit.fail", "room_id", roomID, "err", err)
		return
	}
	c.log.Info("room.left", "room_id", roomID)
}

// handleJoinedRoom correlates a join confirmation with its waiter by room
// id. Membership is recorded only when a waiter exists: a confirmation
// whose join already timed out is stale and must not flip state.
func (c *Client) handleJoinedRoom(gen int, data json.RawMessage) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		c.log.Warn("room.joined.bad", "err", err)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	ack, ok := c.pendingJoins[p.RoomID]
	if ok {
		delete(c.pendingJoins, p.RoomID)
		c.currentRoomID = p.RoomID
		// Closed under the lock so a timing-out JoinRoom either sees the
		// closed channel or finds membership still unset, never a mix.
		close(ack)
	}
	c.mu.Unlock()

	if !ok {
		c.log.Info("room.joined.stale", "room_id", p.RoomID)
		return
	}
	c.log.Info("room.joined", "room_id", p.RoomID)
}

// resolvePendingJoin settles a join attempt that stopped waiting. Under the
// same lock the confirmation handler closes the ack with, it either observes
// the confirmation (true) or withdraws the pending entry so a later
// confirmation is treated as stale; the outcome can never be a false return
// with membership recorded.
func (c *Client) resolvePendingJoin(roomID string, ack chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ack:
		return true
	default:
	}
	if cur, ok := c.pendingJoins[roomID]; ok && cur == ack {
		delete(c.pendingJoins, roomID)
	}
	return false
}
