package entity

import "time"

// Attachment is a file reference carried inside a message. The URL always
// points at durable storage; client-local blob previews never reach the server.
type Attachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Message is immutable once created. The unordered {SenderID, RecipientID}
// pair identifies the conversation it belongs to; there is no conversation
// row, the pair is derived at query time.
type Message struct {
	ID          int64        `json:"id"`
	SenderID    string       `json:"senderId"`
	RecipientID string       `json:"recipientId"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	Sender      *UserSummary `json:"sender,omitempty"`
}

// HasBody reports whether the message carries anything to deliver.
func (m *Message) HasBody() bool {
	return m.Content != "" || len(m.Attachments) > 0
}
