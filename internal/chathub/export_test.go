package chathub

import "strangerchat/backend/internal/models"

// Read accessors for tests. The transport and the HTTP handlers only need Snapshot.

// SessionOf returns the current session id of the connection.
func (m *ManagerService) SessionOf(connID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.registry.sessionOf(connID); s != nil {
		return s.ID, true
	}
	return "", false
}

// RoomOf returns the room a session belongs to.
func (m *ManagerService) RoomOf(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.rooms.roomOf(sessionID); ok {
		return room.ID, true
	}
	return "", false
}

// RoomMembers returns the two session ids of a room.
func (m *ManagerService) RoomMembers(roomID string) ([2]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room, ok := m.rooms.get(roomID); ok {
		return room.Members, true
	}
	return [2]string{}, false
}

// RoomMessages returns a copy of the room's message log in delivery order.
func (m *ManagerService) RoomMessages(roomID string) []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms.get(roomID)
	if !ok {
		return nil
	}
	out := make([]models.Message, len(room.Messages))
	copy(out, room.Messages)
	return out
}

// QueuedSessions returns the waiting queue in arrival order.
func (m *ManagerService) QueuedSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.queue.snapshot()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SessionID
	}
	return out
}

// RecentPartners returns the connection handles this connection was recently paired
// with, most recent first.
func (m *ManagerService) RecentPartners(connID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.recent(connID)
}

func (q *waitingQueue) snapshot() []WaitingEntry {
	out := make([]WaitingEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

func (h *partnerHistory) recent(owner string) []string {
	list := h.partners[owner]
	out := make([]string, len(list))
	copy(out, list)
	return out
}
