package chathub

import (
	"strangerchat/backend/internal/models"
	"sync"
)

// MockClient is an in-memory Client that records every delivered event. It lives in
// package chathub so both the internal and the chathub_test tests can use it.
type MockClient struct {
	ID string

	mu          sync.Mutex
	events      []models.Event
	closed      bool
	refuse      bool
	aliveChecks int
	dieAfter    int
}

func NewMockClient(id string) *MockClient {
	return &MockClient{ID: id}
}

func (c *MockClient) GetConnID() string { return c.ID }

func (c *MockClient) Deliver(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.refuse {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *MockClient) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliveChecks++
	if c.closed {
		return false
	}
	return c.dieAfter == 0 || c.aliveChecks <= c.dieAfter
}

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Kill simulates a connection that died without a clean disconnect.
func (c *MockClient) Kill() { c.Close() }

// Refuse makes every later Deliver fail while IsAlive keeps reporting true.
func (c *MockClient) Refuse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refuse = true
}

// DieAfter makes IsAlive report false after n more successful checks.
func (c *MockClient) DieAfter(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliveChecks = 0
	c.dieAfter = n
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns the delivered events of the given type, or all of them for "".
func (c *MockClient) Events(eventType string) []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Event
	for _, ev := range c.events {
		if eventType == "" || ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the most recent event of the given type.
func (c *MockClient) Last(eventType string) (models.Event, bool) {
	events := c.Events(eventType)
	if len(events) == 0 {
		return models.Event{}, false
	}
	return events[len(events)-1], true
}

// Reset forgets the recorded events.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
