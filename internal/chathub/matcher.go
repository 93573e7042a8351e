package chathub

import (
	"strangerchat/backend/internal/models"
)

// pairLocked runs the pairing algorithm for a freshly bound session. The caller has
// already ended the connection's previous session, so s is in no queue or room yet.
//
//  1. evict queue entries whose connection is gone;
//  2. pick the earliest queued candidate that is not the session itself and not a
//     recent partner, unless at most one candidate is left, in which case history
//     is ignored so two lone users can always rematch;
//  3. on a match create the room and record history on both sides, otherwise
//     append the session to the queue.
func (m *ManagerService) pairLocked(s *Session) {
	for _, e := range m.queue.evict(m.deadEntryLocked) {
		m.logger.Debug("evicted dead queue entry", "session_id", e.SessionID, "conn_id", e.ConnID)
		m.registry.unbind(e.SessionID)
	}

	self := WaitingEntry{SessionID: s.ID, ConnID: s.ConnID}
	partner, ok := m.selectPartnerLocked(self)
	if !ok {
		m.queue.push(self)
		m.logger.Debug("session queued", "session_id", s.ID, "queue_len", m.queue.len())
		return
	}

	m.queue.remove(partner.SessionID)

	// The partner may have died after it was selected. The joiner goes back to the
	// front so the failed attempt costs it nothing.
	pc, ok := m.registry.client(partner.ConnID)
	if !ok || !pc.IsAlive() {
		m.logger.Info("partner lost before room creation, requeueing joiner",
			"session_id", s.ID,
			"partner_session_id", partner.SessionID)
		m.registry.unbind(partner.SessionID)
		m.queue.pushFront(self)
		return
	}

	// The earlier arrival is listed first.
	room := m.rooms.create(partner.SessionID, s.ID, m.now())
	m.history.record(s.ConnID, partner.ConnID)

	joined := models.Event{Type: models.EventRoomJoined, Data: models.RoomJoined{RoomID: room.ID, MemberCount: 2}}
	m.sendLocked(partner.SessionID, joined)
	m.sendLocked(partner.SessionID, models.Event{Type: models.EventUserJoined, Data: models.MemberCount{MemberCount: 2}})
	m.sendLocked(s.ID, joined)

	m.emitLocked(models.LifecycleEvent{
		Kind:    models.RoomOpened,
		RoomID:  room.ID,
		Members: room.Members,
		At:      room.CreatedAt,
	})
	m.logger.Info("match found",
		"room_id", room.ID,
		"session_id", s.ID,
		"partner_session_id", partner.SessionID)
}

// deadEntryLocked reports whether a queue entry no longer belongs to a live
// connection's current session.
func (m *ManagerService) deadEntryLocked(e WaitingEntry) bool {
	c, ok := m.registry.client(e.ConnID)
	if !ok || !c.IsAlive() {
		return true
	}
	s := m.registry.sessionOf(e.ConnID)
	return s == nil || s.ID != e.SessionID
}

func (m *ManagerService) selectPartnerLocked(self WaitingEntry) (WaitingEntry, bool) {
	var candidates []WaitingEntry
	for _, e := range m.queue.entries {
		if e.SessionID == self.SessionID || e.ConnID == self.ConnID {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return WaitingEntry{}, false
	}

	ignoreHistory := len(candidates) <= 1
	for _, e := range candidates {
		if !ignoreHistory && m.history.contains(self.ConnID, e.ConnID) {
			continue
		}
		return e, true
	}
	return WaitingEntry{}, false
}
