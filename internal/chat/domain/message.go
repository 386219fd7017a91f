package domain

import (
	"errors"
	"time"
)

var (
	// ErrEmptyMessage rejects messages that are empty after trimming
	ErrEmptyMessage = errors.New("message text is empty")
	// ErrSelfMessage rejects messages addressed to the sender
	ErrSelfMessage = errors.New("cannot send a message to yourself")
)

// Message is one entry in the append-only conversation log. Text is stored in
// full; any truncation happens only in push notification payloads.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"index;not null"`
	ReceiverID string    `json:"receiver_id" gorm:"index;not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	Read       bool      `json:"read" gorm:"default:false"`
}

// Between reports whether the message belongs to the unordered pair {a, b}
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// Involves reports whether the user is sender or receiver
func (m *Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}
