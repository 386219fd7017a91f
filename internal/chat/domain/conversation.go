package domain

import "strings"

// PairKey derives the conversation id from the two participant ids: sorted
// lexicographically and joined, so both sides compute the same id without any
// coordination or lookup.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return strings.Join([]string{a, b}, "_")
}

// Conversation is the derived per-peer view; it is never persisted. An entry
// exists for every accepted friend, messages or not.
type Conversation struct {
	ID          string   `json:"id"`
	PeerID      string   `json:"peer_id"`
	UnreadCount int      `json:"unread_count"`
	LastMessage *Message `json:"last_message,omitempty"`
}

// Snapshot is the full projected state pushed to one viewer on every change
type Snapshot struct {
	Conversations []Conversation `json:"conversations"`
	Messages      []Message      `json:"messages"`
	TotalUnread   int            `json:"total_unread"`
}
