package chathub_test

import (
	"io"
	"log/slog"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayCount(t *testing.T) {
	tests := []struct {
		actual     int
		multiplier float64
		want       int
	}{
		{0, 1.5, 0},
		{1, 1.5, 1},
		{2, 1.5, 3},
		{3, 1.5, 4},
		{10, 1.5, 15},
		{7, 1, 7},
		{7, 0.5, 7},
		{7, 0, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chathub.DisplayCount(tt.actual, tt.multiplier),
			"DisplayCount(%d, %v)", tt.actual, tt.multiplier)
	}
}

// TestPresence_BroadcastOnConnectAndDisconnect verifies that every connection receives
// the inflated count while Snapshot keeps the real one.
func TestPresence_BroadcastOnConnectAndDisconnect(t *testing.T) {
	hub := createTestHub(t)

	a := connectClient(t, hub, "conn_A")
	ev, ok := a.Last(models.EventOnlineUsers)
	require.True(t, ok)
	assert.Equal(t, 1, ev.Data)

	b := connectClient(t, hub, "conn_B")
	for _, c := range []*chathub.MockClient{a, b} {
		ev, ok := c.Last(models.EventOnlineUsers)
		require.True(t, ok)
		assert.Equal(t, 3, ev.Data)
	}
	assert.Equal(t, 2, hub.Snapshot().Online)
	assert.Equal(t, 3, hub.Snapshot().Display)

	hub.Disconnect(b.GetConnID())
	ev, ok = a.Last(models.EventOnlineUsers)
	require.True(t, ok)
	assert.Equal(t, 1, ev.Data)
}

func TestPresence_SnapshotCountsRoomsAndQueue(t *testing.T) {
	hub := createTestHub(t)
	pairClients(t, hub)
	c := connectClient(t, hub, "conn_C")
	joinClient(t, hub, c)

	snap := hub.Snapshot()
	assert.Equal(t, models.PresenceSnapshot{Online: 3, Display: 4, Rooms: 1, Waiting: 1}, snap)
}

func TestPresence_CustomMultiplier(t *testing.T) {
	cfg := config.Default()
	cfg.OnlineDisplayMultiplier = 1
	hub := chathub.NewManagerService(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	connectClient(t, hub, "conn_A")
	b := connectClient(t, hub, "conn_B")

	ev, ok := b.Last(models.EventOnlineUsers)
	require.True(t, ok)
	assert.Equal(t, 2, ev.Data)
}
