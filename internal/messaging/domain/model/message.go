package model

import (
	"time"
)

// Message is one direct message between two users. Either Text or Image
// (hosted URL) must be present.
type Message struct {
	ID         string    `json:"_id" bson:"id,omitempty"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	ReceiverID string    `json:"receiverId" bson:"receiverId"`
	Text       string    `json:"text,omitempty" bson:"text,omitempty"`
	Image      string    `json:"image,omitempty" bson:"image,omitempty"`
	Seen       bool      `json:"seen" bson:"seen"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}

// IsEmpty reports whether the message carries neither text nor image.
func (m *Message) IsEmpty() bool {
	return m.Text == "" && m.Image == ""
}
