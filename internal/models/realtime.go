package models

import "encoding/json"

// Inbound event names (client -> server).
const (
	EventJoinChat    = "join-chat"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventAddReaction = "add-reaction"
	EventLeaveChat   = "leave-chat"
)

// Outbound event names (server -> client).
const (
	EventYourSessionID       = "your-session-id"
	EventRoomJoined          = "room-joined"
	EventUserJoined          = "user-joined"
	EventUserLeft            = "user-left"
	EventPartnerDisconnected = "partner-disconnected"
	EventNewMessage          = "new-message"
	EventUserTyping          = "user-typing"
	EventNewReaction         = "new-reaction"
	EventOnlineUsers         = "online-users"
)

// Event is a single frame on the wire: {"event": "...", "data": ...}.
type Event struct {
	Type string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// InboundEvent is the decoded form of a client frame. Data is kept raw until the
// dispatcher knows which payload type to expect.
type InboundEvent struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RoomJoined is the payload of room-joined.
type RoomJoined struct {
	RoomID      string `json:"roomId"`
	MemberCount int    `json:"memberCount"`
}

// MemberCount is the payload of user-joined and user-left.
type MemberCount struct {
	MemberCount int `json:"memberCount"`
}

// TypingPayload is the payload of the inbound typing event.
type TypingPayload struct {
	IsTyping *bool `json:"isTyping"`
}

// ReactionPayload is the payload of add-reaction and new-reaction.
type ReactionPayload struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

// PresenceSnapshot describes the relay population at one instant.
type PresenceSnapshot struct {
	Online  int `json:"online"`
	Display int `json:"display"`
	Rooms   int `json:"rooms"`
	Waiting int `json:"waiting"`
}
