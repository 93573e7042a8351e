package models

import "time"

// LifecycleKind tells which side effect a LifecycleEvent asks for.
type LifecycleKind int

const (
	RoomOpened LifecycleKind = iota + 1
	RoomClosed
	PresenceChanged
)

// LifecycleEvent is emitted by the hub after a state change and handled outside of its
// critical section.
type LifecycleEvent struct {
	Kind LifecycleKind
	At   time.Time

	// Set for RoomOpened and RoomClosed.
	RoomID  string
	Members [2]string

	// Set for RoomClosed.
	MessageCount int
	Kinds        []string
	Reason       string

	// Set for PresenceChanged.
	Presence PresenceSnapshot
}
