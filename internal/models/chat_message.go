package models

// Payload kinds of a chat message, decided by which optional field is populated.
const (
	KindText  = "text"
	KindImage = "image"
	KindAudio = "audio"
)

// ReplyRef is a best-effort preview of the message being replied to. The referenced
// message does not have to exist any more.
type ReplyRef struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
	Audio    string `json:"audio,omitempty"`
}

// SendMessagePayload is the payload of the inbound send-message event.
type SendMessagePayload struct {
	Content string    `json:"content,omitempty"`
	Image   string    `json:"image,omitempty"`
	Audio   string    `json:"audio,omitempty"`
	ReplyTo *ReplyRef `json:"replyTo,omitempty"`
}

// Empty reports whether the payload carries none of content, image or audio.
func (p SendMessagePayload) Empty() bool {
	return p.Content == "" && p.Image == "" && p.Audio == ""
}

// Message is a relayed chat message. It is immutable once created and only ever lives
// in process memory.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Audio     string    `json:"audio,omitempty"`
	ReplyTo   *ReplyRef `json:"replyTo,omitempty"`
	Timestamp int64     `json:"timestamp"`
	// SenderID is the real session id on the sender's echo and the peer marker on the
	// copy delivered to the other member.
	SenderID string `json:"userId"`
	RoomID   string `json:"roomId"`
}

// Kinds returns the payload kinds carried by the message.
func (m Message) Kinds() []string {
	var kinds []string
	if m.Content != "" {
		kinds = append(kinds, KindText)
	}
	if m.Image != "" {
		kinds = append(kinds, KindImage)
	}
	if m.Audio != "" {
		kinds = append(kinds, KindAudio)
	}
	return kinds
}

// Masked returns a copy of the message with the sender relabelled.
func (m Message) Masked(marker string) Message {
	m.SenderID = marker
	return m
}
