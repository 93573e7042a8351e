package chathub

import (
	"encoding/json"
	"fmt"
	"strangerchat/backend/internal/models"

	"github.com/google/uuid"
)

// SendMessage appends a message to the sender's room and delivers it to both members:
// the sender gets its own session id back, the partner gets the peer marker.
func (m *ManagerService) SendMessage(connID string, p models.SendMessagePayload) (models.Message, error) {
	if p.Empty() {
		return models.Message{}, fmt.Errorf("%w: send-message without content, image or audio", ErrMalformedEvent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, room, err := m.roomForConnLocked(connID)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		Content:   p.Content,
		Image:     p.Image,
		Audio:     p.Audio,
		ReplyTo:   p.ReplyTo,
		Timestamp: m.now().UnixMilli(),
		SenderID:  s.ID,
		RoomID:    room.ID,
	}
	m.rooms.appendMessage(room, msg)

	m.sendLocked(s.ID, models.Event{Type: models.EventNewMessage, Data: msg})
	m.sendLocked(room.Partner(s.ID), models.Event{Type: models.EventNewMessage, Data: msg.Masked(m.cfg.PeerMarker)})
	m.reapLocked()
	return msg, nil
}

// SetTyping relays a typing indicator to the partner only. Nothing is stored.
func (m *ManagerService) SetTyping(connID string, isTyping bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, room, err := m.roomForConnLocked(connID)
	if err != nil {
		return err
	}
	m.sendLocked(room.Partner(s.ID), models.Event{Type: models.EventUserTyping, Data: isTyping})
	m.reapLocked()
	return nil
}

// AddReaction relays a reaction to the partner. The message id is not checked against
// the room log; clients ignore reactions to messages they do not know.
func (m *ManagerService) AddReaction(connID string, p models.ReactionPayload) error {
	if p.MessageID == "" || p.Reaction == "" {
		return fmt.Errorf("%w: add-reaction needs messageId and reaction", ErrMalformedEvent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, room, err := m.roomForConnLocked(connID)
	if err != nil {
		return err
	}
	m.sendLocked(room.Partner(s.ID), models.Event{Type: models.EventNewReaction, Data: p})
	m.reapLocked()
	return nil
}

func (m *ManagerService) roomForConnLocked(connID string) (*Session, *Room, error) {
	s := m.registry.sessionOf(connID)
	if s == nil {
		return nil, nil, ErrNoSession
	}
	room, ok := m.rooms.roomOf(s.ID)
	if !ok {
		return s, nil, ErrNoRoom
	}
	return s, room, nil
}

// Dispatch decodes one client frame and runs the matching command.
func (m *ManagerService) Dispatch(connID string, raw []byte) error {
	var in models.InboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch in.Type {
	case models.EventJoinChat:
		_, err := m.Join(connID)
		return err

	case models.EventLeaveChat:
		m.Leave(connID)
		return nil

	case models.EventSendMessage:
		var p models.SendMessagePayload
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		_, err := m.SendMessage(connID, p)
		return err

	case models.EventTyping:
		var p models.TypingPayload
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		if p.IsTyping == nil {
			return fmt.Errorf("%w: typing without isTyping", ErrMalformedEvent)
		}
		return m.SetTyping(connID, *p.IsTyping)

	case models.EventAddReaction:
		var p models.ReactionPayload
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		return m.AddReaction(connID, p)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, in.Type)
	}
}

func decodePayload(in models.InboundEvent, dst any) error {
	if len(in.Data) == 0 {
		return fmt.Errorf("%w: %s without data", ErrMalformedEvent, in.Type)
	}
	if err := json.Unmarshal(in.Data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, in.Type, err)
	}
	return nil
}
