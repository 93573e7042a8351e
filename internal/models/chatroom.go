package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Reasons recorded when a room is closed.
const (
	EndReasonLeft       = "left"
	EndReasonDisconnect = "disconnect"
	EndReasonRejoin     = "rejoin"
	EndReasonShutdown   = "shutdown"
	EndReasonRestart    = "restart"
)

// ChatRoom is the ledger record of a 1-on-1 room. It carries metadata only; message
// content is never stored.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey" json:"roomId"`
	// User1ID and User2ID are the ephemeral session ids of the two members.
	User1ID string `json:"user1Id"`
	User2ID string `json:"user2Id"`
	// IsActive indicates whether the chat room is currently active.
	IsActive bool `gorm:"index" json:"isActive"`
	// MessageCount is the number of messages relayed in the room.
	MessageCount int `json:"messageCount"`
	// Kinds lists the payload kinds that were relayed (text, image, audio).
	Kinds     pq.StringArray `gorm:"type:text[]" json:"kinds"`
	EndReason string         `json:"endReason,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
}

// BeforeCreate fills in the id and start time when the caller left them empty.
func (r *ChatRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.RoomID == "" {
		r.RoomID = uuid.New().String()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	return
}

// Duration returns how long the room was open; open rooms are measured up to now.
func (r *ChatRoom) Duration(now time.Time) time.Duration {
	if r.EndedAt != nil {
		return r.EndedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}
