// Package chathub pairs anonymous sessions into two-person rooms and relays events
// between them.
//
// All shared state (connections, waiting queue, rooms, partner history) lives in
// ManagerService behind one mutex, so "scan queue, pick partner, remove partner,
// create room" is a single step. Nothing under that mutex blocks on I/O: events are
// handed to clients with a non-blocking Deliver and side effects such as the room
// ledger leave through the lifecycle channel.
package chathub

import (
	"errors"
	"fmt"
	"log/slog"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"sync"
	"time"
)

var (
	ErrUnknownConn    = errors.New("chathub: unknown connection")
	ErrDuplicateConn  = errors.New("chathub: connection already registered")
	ErrNoSession      = errors.New("chathub: connection has no session")
	ErrNoRoom         = errors.New("chathub: session is not in a room")
	ErrMalformedEvent = errors.New("chathub: malformed event")
	ErrUnknownEvent   = errors.New("chathub: unknown event")
)

// ManagerService is the relay core.
type ManagerService struct {
	mu sync.Mutex

	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	registry *registry
	queue    *waitingQueue
	history  *partnerHistory
	rooms    *roomTable

	// reap holds sessions whose client refused a delivery; they are ended before the
	// current operation releases the lock.
	reap []string

	lifecycle chan models.LifecycleEvent
}

// NewManagerService creates the hub. A nil cfg means config.Default().
func NewManagerService(cfg *config.Config, logger *slog.Logger) *ManagerService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &ManagerService{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		registry: newRegistry(),
		queue:    &waitingQueue{},
		history:  newPartnerHistory(cfg.HistoryLimit),
		rooms:    newRoomTable(cfg.RoomLogLimit),
	}
	if cfg.LifecycleBuffer > 0 {
		m.lifecycle = make(chan models.LifecycleEvent, cfg.LifecycleBuffer)
	}
	return m
}

// Connect registers a live connection and broadcasts the new online count.
func (m *ManagerService) Connect(c Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.add(c) {
		return fmt.Errorf("%w: %s", ErrDuplicateConn, c.GetConnID())
	}
	m.logger.Debug("connection registered", "conn_id", c.GetConnID())
	m.broadcastPresenceLocked()
	return nil
}

// Disconnect ends the connection's session as if it had left, forgets its partner
// history and drops it. Unknown connections are ignored.
func (m *ManagerService) Disconnect(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registry.client(connID); !ok {
		return
	}
	if s := m.registry.sessionOf(connID); s != nil {
		m.endSessionLocked(s.ID, models.EndReasonDisconnect)
	}
	m.history.forget(connID)
	if c, ok := m.registry.remove(connID); ok {
		c.Close()
	}
	m.logger.Debug("connection unregistered", "conn_id", connID)
	m.reapLocked()
	m.broadcastPresenceLocked()
}

// Join assigns the connection a fresh session, abandoning any previous one, and tries
// to pair it. It returns the new session id.
func (m *ManagerService) Join(connID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.registry.client(connID); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConn, connID)
	}
	if prior := m.registry.sessionOf(connID); prior != nil {
		m.endSessionLocked(prior.ID, models.EndReasonRejoin)
	}

	s := m.registry.bind(connID, m.now())
	if !m.sendLocked(s.ID, models.Event{Type: models.EventYourSessionID, Data: s.ID}) {
		// A client that cannot learn its session id must not be queued or paired.
		m.reapLocked()
		return "", fmt.Errorf("%w: delivery refused on join for %s", ErrNoSession, connID)
	}

	m.pairLocked(s)
	m.reapLocked()
	return s.ID, nil
}

// Leave ends the connection's current session. It is a no-op when there is none.
func (m *ManagerService) Leave(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.registry.sessionOf(connID)
	if s == nil {
		return
	}
	m.endSessionLocked(s.ID, models.EndReasonLeft)
	m.reapLocked()
}

// Snapshot reports the current population.
func (m *ManagerService) Snapshot() models.PresenceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Shutdown closes every room and every client. Clients that disconnect afterwards find
// nothing left to clean up.
func (m *ManagerService) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms.all() {
		m.rooms.delete(room)
		m.emitRoomClosedLocked(room, models.EndReasonShutdown)
	}
	m.queue.clear()
	for _, c := range m.registry.clients() {
		if s := m.registry.sessionOf(c.GetConnID()); s != nil {
			m.registry.unbind(s.ID)
		}
		c.Close()
	}
	m.reap = nil
	m.logger.Info("chat hub shut down")
}

// endSessionLocked removes the session from the queue and its room, notifies the
// partner and destroys the session. Calling it for an unknown session does nothing.
func (m *ManagerService) endSessionLocked(sessionID, reason string) {
	m.queue.remove(sessionID)
	if room, ok := m.rooms.roomOf(sessionID); ok {
		m.closeRoomLocked(room, sessionID, reason)
	}
	m.registry.unbind(sessionID)
}

// closeRoomLocked deletes the room after leaver left it and tells the remaining member.
// A room never outlives the departure of one of its two members.
func (m *ManagerService) closeRoomLocked(room *Room, leaver, reason string) {
	m.rooms.delete(room)
	m.emitRoomClosedLocked(room, reason)

	remaining := room.Partner(leaver)
	if remaining == "" {
		return
	}
	m.sendLocked(remaining, models.Event{Type: models.EventPartnerDisconnected})
	m.sendLocked(remaining, models.Event{Type: models.EventUserLeft, Data: models.MemberCount{MemberCount: 1}})
	m.logger.Info("room closed",
		"room_id", room.ID,
		"session_id", leaver,
		"reason", reason)
}

// sendLocked delivers ev to the session's client. A refused delivery marks the session
// for reaping as an implicit leave and reports false.
func (m *ManagerService) sendLocked(sessionID string, ev models.Event) bool {
	_, c, ok := m.registry.lookup(sessionID)
	if !ok {
		return false
	}
	if !c.Deliver(ev) {
		m.logger.Warn("delivery refused, dropping session",
			"session_id", sessionID,
			"conn_id", c.GetConnID(),
			"event", ev.Type)
		m.reap = append(m.reap, sessionID)
		return false
	}
	return true
}

func (m *ManagerService) reapLocked() {
	for len(m.reap) > 0 {
		sessionID := m.reap[0]
		m.reap = m.reap[1:]
		m.endSessionLocked(sessionID, models.EndReasonDisconnect)
	}
}

func (m *ManagerService) emitLocked(ev models.LifecycleEvent) {
	if m.lifecycle == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = m.now()
	}
	select {
	case m.lifecycle <- ev:
	default:
		m.logger.Warn("lifecycle buffer full, dropping event", "kind", ev.Kind, "room_id", ev.RoomID)
	}
}

func (m *ManagerService) emitRoomClosedLocked(room *Room, reason string) {
	m.emitLocked(models.LifecycleEvent{
		Kind:         models.RoomClosed,
		RoomID:       room.ID,
		Members:      room.Members,
		MessageCount: room.messageCount,
		Kinds:        room.kindList(),
		Reason:       reason,
	})
}
