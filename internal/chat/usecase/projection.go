package usecase

import (
	"sort"
	"time"

	chatdomain "cafely-backend/internal/chat/domain"
)

// The projection is recomputed from the full message set on every update. All
// passes are linear or n·log n in message count so it can run synchronously on
// each change.

// SortMessages orders messages by (timestamp, id) ascending. The id tie-break
// keeps equal-timestamp messages in a stable order for every viewer.
func SortMessages(messages []chatdomain.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

// BuildSnapshot derives the viewer's conversation state from their sorted
// message set and accepted-friend list. Conversation existence follows
// friendship, not messages: a friend with no history still yields an entry,
// and an ex-friend's messages no longer surface as a conversation.
func BuildSnapshot(viewerID string, friendIDs []string, messages []chatdomain.Message) *chatdomain.Snapshot {
	SortMessages(messages)

	lastByPeer := make(map[string]*chatdomain.Message, len(friendIDs))
	unreadByPeer := make(map[string]int, len(friendIDs))
	for i := range messages {
		msg := &messages[i]
		peer := msg.SenderID
		if peer == viewerID {
			peer = msg.ReceiverID
		}
		// Messages are sorted ascending, so the last assignment wins
		lastByPeer[peer] = msg
		if msg.ReceiverID == viewerID && !msg.Read {
			unreadByPeer[peer]++
		}
	}

	conversations := make([]chatdomain.Conversation, 0, len(friendIDs))
	totalUnread := 0
	for _, peerID := range friendIDs {
		conv := chatdomain.Conversation{
			ID:          chatdomain.PairKey(viewerID, peerID),
			PeerID:      peerID,
			UnreadCount: unreadByPeer[peerID],
			LastMessage: lastByPeer[peerID],
		}
		totalUnread += conv.UnreadCount
		conversations = append(conversations, conv)
	}

	// Most recent activity first; empty conversations trail in peer id order
	sort.SliceStable(conversations, func(i, j int) bool {
		li, lj := conversations[i].LastMessage, conversations[j].LastMessage
		switch {
		case li == nil && lj == nil:
			return conversations[i].PeerID < conversations[j].PeerID
		case lj == nil:
			return true
		case li == nil:
			return false
		default:
			return li.CreatedAt.After(lj.CreatedAt)
		}
	})

	return &chatdomain.Snapshot{
		Conversations: conversations,
		Messages:      messages,
		TotalUnread:   totalUnread,
	}
}

// UnreadFrom counts unread messages addressed to the viewer from one peer
func UnreadFrom(viewerID, peerID string, messages []chatdomain.Message) int {
	count := 0
	for i := range messages {
		if messages[i].SenderID == peerID && messages[i].ReceiverID == viewerID && !messages[i].Read {
			count++
		}
	}
	return count
}

// NeedsDateSeparator reports whether a date separator belongs before cur: true
// for the first message and whenever the local calendar date changed.
func NeedsDateSeparator(prev, cur *chatdomain.Message, loc *time.Location) bool {
	if cur == nil {
		return false
	}
	if prev == nil {
		return true
	}
	py, pm, pd := prev.CreatedAt.In(loc).Date()
	cy, cm, cd := cur.CreatedAt.In(loc).Date()
	return py != cy || pm != cm || pd != cd
}

// StartsSenderRun reports whether cur begins a new same-sender run
func StartsSenderRun(prev, cur *chatdomain.Message) bool {
	if cur == nil {
		return false
	}
	return prev == nil || prev.SenderID != cur.SenderID
}
