package chathub

import (
	"sort"
	"strangerchat/backend/internal/models"
	"time"

	"github.com/google/uuid"
)

// Room is an active two-party relay channel.
type Room struct {
	ID        string
	Members   [2]string
	Messages  []models.Message
	CreatedAt time.Time

	messageCount int
	kinds        map[string]struct{}
}

// Partner returns the other member, or "" when sessionID is not a member.
func (r *Room) Partner(sessionID string) string {
	switch sessionID {
	case r.Members[0]:
		return r.Members[1]
	case r.Members[1]:
		return r.Members[0]
	}
	return ""
}

func (r *Room) kindList() []string {
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// roomTable owns every active room. Not safe for concurrent use.
type roomTable struct {
	rooms     map[string]*Room
	bySession map[string]string
	logLimit  int
}

func newRoomTable(logLimit int) *roomTable {
	return &roomTable{
		rooms:     make(map[string]*Room),
		bySession: make(map[string]string),
		logLimit:  logLimit,
	}
}

func (t *roomTable) create(a, b string, now time.Time) *Room {
	room := &Room{
		ID:        uuid.NewString(),
		Members:   [2]string{a, b},
		CreatedAt: now,
		kinds:     make(map[string]struct{}),
	}
	t.rooms[room.ID] = room
	t.bySession[a] = room.ID
	t.bySession[b] = room.ID
	return room
}

func (t *roomTable) get(roomID string) (*Room, bool) {
	room, ok := t.rooms[roomID]
	return room, ok
}

func (t *roomTable) roomOf(sessionID string) (*Room, bool) {
	roomID, ok := t.bySession[sessionID]
	if !ok {
		return nil, false
	}
	return t.get(roomID)
}

// appendMessage adds msg to the room log, trimming the oldest entries past logLimit.
func (t *roomTable) appendMessage(room *Room, msg models.Message) {
	room.Messages = append(room.Messages, msg)
	if t.logLimit > 0 && len(room.Messages) > t.logLimit {
		room.Messages = append([]models.Message(nil), room.Messages[len(room.Messages)-t.logLimit:]...)
	}
	room.messageCount++
	for _, k := range msg.Kinds() {
		room.kinds[k] = struct{}{}
	}
}

// delete removes the room and the membership of both sessions.
func (t *roomTable) delete(room *Room) {
	for _, member := range room.Members {
		if t.bySession[member] == room.ID {
			delete(t.bySession, member)
		}
	}
	delete(t.rooms, room.ID)
}

func (t *roomTable) count() int { return len(t.rooms) }

func (t *roomTable) all() []*Room {
	out := make([]*Room, 0, len(t.rooms))
	for _, room := range t.rooms {
		out = append(out, room)
	}
	return out
}
