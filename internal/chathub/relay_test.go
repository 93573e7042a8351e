package chathub_test

import (
	"fmt"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSendMessage_EchoAndMask verifies that the sender sees its own session id and the
// partner sees the peer marker, with everything else identical.
func TestSendMessage_EchoAndMask(t *testing.T) {
	hub := createTestHub(t)
	a, b, sa, _, roomID := pairClients(t, hub)

	msg, err := hub.SendMessage(a.GetConnID(), models.SendMessagePayload{Content: "hi"})
	require.NoError(t, err)

	echo, ok := a.Last(models.EventNewMessage)
	require.True(t, ok)
	got := echo.Data.(models.Message)
	assert.Equal(t, sa, got.SenderID)
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, roomID, got.RoomID)
	assert.NotEmpty(t, got.ID)
	assert.NotZero(t, got.Timestamp)

	relayed, ok := b.Last(models.EventNewMessage)
	require.True(t, ok)
	masked := relayed.Data.(models.Message)
	assert.Equal(t, config.DefaultPeerMarker, masked.SenderID)
	assert.Equal(t, got.ID, masked.ID)
	assert.Equal(t, got.Timestamp, masked.Timestamp)
	assert.Equal(t, msg.Masked(config.DefaultPeerMarker), masked)

	log := hub.RoomMessages(roomID)
	require.Len(t, log, 1)
	assert.Equal(t, sa, log[0].SenderID)
}

// TestSendMessage_PreservesOrder verifies that messages reach the partner in the order
// they were sent and the room log matches.
func TestSendMessage_PreservesOrder(t *testing.T) {
	hub := createTestHub(t)
	a, b, _, _, roomID := pairClients(t, hub)

	for i := 0; i < 20; i++ {
		_, err := hub.SendMessage(a.GetConnID(), models.SendMessagePayload{Content: fmt.Sprint(i)})
		require.NoError(t, err)
	}

	received := b.Events(models.EventNewMessage)
	require.Len(t, received, 20)
	log := hub.RoomMessages(roomID)
	require.Len(t, log, 20)
	for i, ev := range received {
		assert.Equal(t, fmt.Sprint(i), ev.Data.(models.Message).Content)
		assert.Equal(t, fmt.Sprint(i), log[i].Content)
	}
}

// TestSendMessage_ReplyAndMedia verifies that optional fields are relayed untouched.
func TestSendMessage_ReplyAndMedia(t *testing.T) {
	hub := createTestHub(t)
	a, b, _, _, _ := pairClients(t, hub)
	reply := &models.ReplyRef{ID: "m1", Content: "earlier", Username: "stranger"}

	_, err := hub.SendMessage(b.GetConnID(), models.SendMessagePayload{
		Image:   "data:image/png;base64,AA==",
		ReplyTo: reply,
	})
	require.NoError(t, err)

	ev, ok := a.Last(models.EventNewMessage)
	require.True(t, ok)
	got := ev.Data.(models.Message)
	assert.Equal(t, "data:image/png;base64,AA==", got.Image)
	assert.Equal(t, reply, got.ReplyTo)
	assert.Empty(t, got.Content)
}

func TestSendMessage_Errors(t *testing.T) {
	hub := createTestHub(t)
	a := connectClient(t, hub, "conn_A")

	_, err := hub.SendMessage(a.GetConnID(), models.SendMessagePayload{Content: "hi"})
	assert.ErrorIs(t, err, chathub.ErrNoSession)

	joinClient(t, hub, a)
	_, err = hub.SendMessage(a.GetConnID(), models.SendMessagePayload{Content: "hi"})
	assert.ErrorIs(t, err, chathub.ErrNoRoom)

	_, err = hub.SendMessage(a.GetConnID(), models.SendMessagePayload{})
	assert.ErrorIs(t, err, chathub.ErrMalformedEvent)

	assert.Empty(t, a.Events(models.EventNewMessage))
}

// TestSendMessage_AfterPartnerLeft verifies that a stale room reference is a no-op.
func TestSendMessage_AfterPartnerLeft(t *testing.T) {
	hub := createTestHub(t)
	a, b, _, _, _ := pairClients(t, hub)
	hub.Leave(b.GetConnID())
	b.Reset()

	_, err := hub.SendMessage(a.GetConnID(), models.SendMessagePayload{Content: "anyone?"})
	assert.ErrorIs(t, err, chathub.ErrNoRoom)
	assert.Empty(t, b.Events(models.EventNewMessage))
}

// TestSetTyping_PartnerOnly verifies that typing indicators never echo to the sender.
func TestSetTyping_PartnerOnly(t *testing.T) {
	hub := createTestHub(t)
	a, b, _, _, _ := pairClients(t, hub)

	require.NoError(t, hub.SetTyping(a.GetConnID(), true))
	require.NoError(t, hub.SetTyping(a.GetConnID(), false))

	events := b.Events(models.EventUserTyping)
	require.Len(t, events, 2)
	assert.Equal(t, true, events[0].Data)
	assert.Equal(t, false, events[1].Data)
	assert.Empty(t, a.Events(models.EventUserTyping))
}

// TestAddReaction_PartnerOnly verifies that reactions reach the partner as sent.
func TestAddReaction_PartnerOnly(t *testing.T) {
	hub := createTestHub(t)
	a, b, _, _, _ := pairClients(t, hub)
	reaction := models.ReactionPayload{MessageID: "m1", Reaction: "👍"}

	require.NoError(t, hub.AddReaction(b.GetConnID(), reaction))

	ev, ok := a.Last(models.EventNewReaction)
	require.True(t, ok)
	assert.Equal(t, reaction, ev.Data)
	assert.Empty(t, b.Events(models.EventNewReaction))

	err := hub.AddReaction(b.GetConnID(), models.ReactionPayload{MessageID: "m1"})
	assert.ErrorIs(t, err, chathub.ErrMalformedEvent)
}

// TestDispatch_RoutesClientFrames drives the hub through raw wire frames.
func TestDispatch_RoutesClientFrames(t *testing.T) {
	hub := createTestHub(t)
	a := connectClient(t, hub, "conn_A")
	b := connectClient(t, hub, "conn_B")

	require.NoError(t, hub.Dispatch("conn_A", []byte(`{"event":"join-chat"}`)))
	require.NoError(t, hub.Dispatch("conn_B", []byte(`{"event":"join-chat"}`)))
	require.NoError(t, hub.Dispatch("conn_A", []byte(`{"event":"send-message","data":{"content":"hello"}}`)))
	require.NoError(t, hub.Dispatch("conn_B", []byte(`{"event":"typing","data":{"isTyping":true}}`)))
	require.NoError(t, hub.Dispatch("conn_B", []byte(`{"event":"add-reaction","data":{"messageId":"m1","reaction":"❤️"}}`)))

	msg, ok := b.Last(models.EventNewMessage)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Data.(models.Message).Content)
	_, ok = a.Last(models.EventUserTyping)
	assert.True(t, ok)
	_, ok = a.Last(models.EventNewReaction)
	assert.True(t, ok)

	require.NoError(t, hub.Dispatch("conn_A", []byte(`{"event":"leave-chat"}`)))
	_, ok = b.Last(models.EventPartnerDisconnected)
	assert.True(t, ok)
}

func TestDispatch_RejectsBadFrames(t *testing.T) {
	hub := createTestHub(t)
	connectClient(t, hub, "conn_A")

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `hello`, chathub.ErrMalformedEvent},
		{"unknown event", `{"event":"dance"}`, chathub.ErrUnknownEvent},
		{"send without data", `{"event":"send-message"}`, chathub.ErrMalformedEvent},
		{"send with wrong shape", `{"event":"send-message","data":"hi"}`, chathub.ErrMalformedEvent},
		{"typing without flag", `{"event":"typing","data":{}}`, chathub.ErrMalformedEvent},
		{"reaction without data", `{"event":"add-reaction"}`, chathub.ErrMalformedEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hub.Dispatch("conn_A", []byte(tt.raw))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
