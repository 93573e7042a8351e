package config

import "time"

const (
	// Pairing
	DefaultHistoryLimit = 5

	// Presence
	DefaultOnlineDisplayMultiplier = 1.5
	DefaultPeerMarker              = "stranger"

	// Rooms
	DefaultRoomLogLimit = 500

	// WebSocket
	DefaultSendBuffer     = 256
	DefaultMaxMessageSize = 8 << 20 // images and audio travel inline as data URLs
	DefaultPongWait       = 60 * time.Second
	DefaultWriteWait      = 10 * time.Second

	// Lifecycle publisher
	DefaultLifecycleBuffer = 1024
	StorageTimeout         = 5 * time.Second
)
