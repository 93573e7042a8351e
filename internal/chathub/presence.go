package chathub

import (
	"math"
	"strangerchat/backend/internal/models"
)

// DisplayCount is the online figure shown to users: max(n, floor(n*multiplier)).
// It is cosmetic and never used for pairing.
func DisplayCount(actual int, multiplier float64) int {
	inflated := int(math.Floor(float64(actual) * multiplier))
	if inflated < actual {
		return actual
	}
	return inflated
}

func (m *ManagerService) snapshotLocked() models.PresenceSnapshot {
	online := m.registry.count()
	return models.PresenceSnapshot{
		Online:  online,
		Display: DisplayCount(online, m.cfg.OnlineDisplayMultiplier),
		Rooms:   m.rooms.count(),
		Waiting: m.queue.len(),
	}
}

// broadcastPresenceLocked sends online-users to every connection. A refused delivery
// is left to the client's own pumps, which disconnect it.
func (m *ManagerService) broadcastPresenceLocked() {
	snap := m.snapshotLocked()
	ev := models.Event{Type: models.EventOnlineUsers, Data: snap.Display}
	for _, c := range m.registry.clients() {
		c.Deliver(ev)
	}
	m.emitLocked(models.LifecycleEvent{Kind: models.PresenceChanged, Presence: snap})
}
