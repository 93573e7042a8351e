package chathub

import (
	"time"

	"github.com/google/uuid"
)

// Session is the ephemeral identity of one chat attempt. A new one is minted on every
// join, and it is never reattached after the connection drops.
type Session struct {
	ID       string
	ConnID   string
	JoinedAt time.Time
}

type connEntry struct {
	client  Client
	session *Session
}

// registry maps live connections to their current session. Not safe for concurrent
// use; ManagerService guards it.
type registry struct {
	conns    map[string]*connEntry
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{
		conns:    make(map[string]*connEntry),
		sessions: make(map[string]*Session),
	}
}

func (r *registry) add(c Client) bool {
	if _, exists := r.conns[c.GetConnID()]; exists {
		return false
	}
	r.conns[c.GetConnID()] = &connEntry{client: c}
	return true
}

// remove drops the connection. The caller must have ended its session already.
func (r *registry) remove(connID string) (Client, bool) {
	entry, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	if entry.session != nil {
		delete(r.sessions, entry.session.ID)
	}
	delete(r.conns, connID)
	return entry.client, true
}

func (r *registry) client(connID string) (Client, bool) {
	entry, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return entry.client, true
}

func (r *registry) sessionOf(connID string) *Session {
	if entry, ok := r.conns[connID]; ok {
		return entry.session
	}
	return nil
}

// bind mints a fresh session for the connection. Any previous session must have been
// cleaned up by the caller first.
func (r *registry) bind(connID string, now time.Time) *Session {
	entry, ok := r.conns[connID]
	if !ok {
		return nil
	}
	if entry.session != nil {
		delete(r.sessions, entry.session.ID)
	}
	s := &Session{ID: uuid.NewString(), ConnID: connID, JoinedAt: now}
	entry.session = s
	r.sessions[s.ID] = s
	return s
}

func (r *registry) unbind(sessionID string) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	if entry, ok := r.conns[s.ConnID]; ok && entry.session == s {
		entry.session = nil
	}
}

func (r *registry) lookup(sessionID string) (*Session, Client, bool) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil, false
	}
	entry, ok := r.conns[s.ConnID]
	if !ok {
		return s, nil, false
	}
	return s, entry.client, true
}

func (r *registry) count() int { return len(r.conns) }

func (r *registry) clients() []Client {
	out := make([]Client, 0, len(r.conns))
	for _, entry := range r.conns {
		out = append(out, entry.client)
	}
	return out
}
