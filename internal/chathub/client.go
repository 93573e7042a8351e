package chathub

import "strangerchat/backend/internal/models"

// Client is the interface for one live connection. It abstracts the transport so the
// hub can pair, relay and tear down without knowing about sockets.
type Client interface {
	// GetConnID returns the handle of the connection. It is stable for the lifetime of
	// the connection and unrelated to any session id.
	GetConnID() string

	// Deliver queues an event for the client without blocking. It reports false when
	// the client is gone or cannot keep up.
	Deliver(models.Event) bool

	// IsAlive reports whether the underlying connection is still usable.
	IsAlive() bool

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the client down. It is safe to call more than once.
	Close()
}
