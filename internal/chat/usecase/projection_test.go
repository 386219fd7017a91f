package usecase

import (
	"testing"
	"time"

	chatdomain "cafely-backend/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func msg(id, sender, receiver, text string, at time.Time, read bool) chatdomain.Message {
	return chatdomain.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  at,
		Read:       read,
	}
}

func TestSortMessagesBreaksTimestampTiesByID(t *testing.T) {
	messages := []chatdomain.Message{
		msg("m3", "alice", "bob", "c", base, false),
		msg("m1", "alice", "bob", "a", base, false),
		msg("m2", "bob", "alice", "b", base.Add(-time.Minute), false),
	}

	SortMessages(messages)

	assert.Equal(t, "m2", messages[0].ID)
	assert.Equal(t, "m1", messages[1].ID, "equal timestamps order by id")
	assert.Equal(t, "m3", messages[2].ID)

	// Re-sorting a sorted slice changes nothing
	SortMessages(messages)
	assert.Equal(t, []string{messages[0].ID, messages[1].ID, messages[2].ID}, []string{"m2", "m1", "m3"})
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, chatdomain.PairKey("alice", "bob"), chatdomain.PairKey("bob", "alice"))
	assert.Equal(t, "alice_bob", chatdomain.PairKey("bob", "alice"))
	assert.NotEqual(t, chatdomain.PairKey("alice", "bob"), chatdomain.PairKey("alice", "carol"))
}

func TestBuildSnapshotUnreadCounts(t *testing.T) {
	messages := []chatdomain.Message{
		msg("m1", "bob", "alice", "hey", base, false),
		msg("m2", "bob", "alice", "you there?", base.Add(time.Minute), false),
		msg("m3", "alice", "bob", "yes", base.Add(2*time.Minute), false),
		msg("m4", "carol", "alice", "hi", base.Add(3*time.Minute), false),
		msg("m5", "bob", "alice", "old", base.Add(-time.Hour), true),
	}

	snap := BuildSnapshot("alice", []string{"bob", "carol"}, messages)

	require.Len(t, snap.Conversations, 2)
	byPeer := map[string]chatdomain.Conversation{}
	for _, c := range snap.Conversations {
		byPeer[c.PeerID] = c
	}

	assert.Equal(t, 2, byPeer["bob"].UnreadCount, "own sends and read messages do not count")
	assert.Equal(t, 1, byPeer["carol"].UnreadCount)
	assert.Equal(t, 3, snap.TotalUnread)

	require.NotNil(t, byPeer["bob"].LastMessage)
	assert.Equal(t, "m3", byPeer["bob"].LastMessage.ID)
}

func TestBuildSnapshotFriendWithoutMessagesGetsEntry(t *testing.T) {
	snap := BuildSnapshot("alice", []string{"bob", "carol"}, []chatdomain.Message{
		msg("m1", "bob", "alice", "hey", base, true),
	})

	require.Len(t, snap.Conversations, 2)
	assert.Equal(t, "bob", snap.Conversations[0].PeerID, "active conversations sort first")
	assert.Equal(t, "carol", snap.Conversations[1].PeerID)
	assert.Nil(t, snap.Conversations[1].LastMessage)
	assert.Zero(t, snap.Conversations[1].UnreadCount)
	assert.Equal(t, chatdomain.PairKey("alice", "carol"), snap.Conversations[1].ID)
}

func TestBuildSnapshotOrdersByRecentActivity(t *testing.T) {
	messages := []chatdomain.Message{
		msg("m1", "bob", "alice", "old", base, true),
		msg("m2", "carol", "alice", "new", base.Add(time.Hour), true),
	}

	snap := BuildSnapshot("alice", []string{"bob", "carol", "dave"}, messages)

	require.Len(t, snap.Conversations, 3)
	assert.Equal(t, "carol", snap.Conversations[0].PeerID)
	assert.Equal(t, "bob", snap.Conversations[1].PeerID)
	assert.Equal(t, "dave", snap.Conversations[2].PeerID, "empty conversations trail")
}

func TestBuildSnapshotIgnoresNonFriendMessages(t *testing.T) {
	messages := []chatdomain.Message{
		msg("m1", "mallory", "alice", "hello", base, false),
	}

	snap := BuildSnapshot("alice", []string{"bob"}, messages)

	require.Len(t, snap.Conversations, 1)
	assert.Equal(t, "bob", snap.Conversations[0].PeerID)
	assert.Zero(t, snap.TotalUnread, "messages from outside the friend list do not surface")
}

func TestUnreadFrom(t *testing.T) {
	messages := []chatdomain.Message{
		msg("m1", "bob", "alice", "a", base, false),
		msg("m2", "bob", "alice", "b", base, true),
		msg("m3", "alice", "bob", "c", base, false),
	}

	assert.Equal(t, 1, UnreadFrom("alice", "bob", messages))
	assert.Equal(t, 0, UnreadFrom("bob", "carol", messages))
}

func TestNeedsDateSeparator(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	evening := msg("m1", "a", "b", "x", time.Date(2026, 3, 14, 23, 30, 0, 0, loc), false)
	lateNight := msg("m2", "a", "b", "y", time.Date(2026, 3, 15, 0, 10, 0, 0, loc), false)
	sameDay := msg("m3", "a", "b", "z", time.Date(2026, 3, 15, 9, 0, 0, 0, loc), false)

	assert.True(t, NeedsDateSeparator(nil, &evening, loc), "first message always gets a separator")
	assert.True(t, NeedsDateSeparator(&evening, &lateNight, loc), "local midnight crossed")
	assert.False(t, NeedsDateSeparator(&lateNight, &sameDay, loc))
	assert.False(t, NeedsDateSeparator(&evening, nil, loc))

	// The boundary is the viewer's local calendar, not UTC
	utcEvening := evening.CreatedAt.In(time.UTC)
	utcLate := lateNight.CreatedAt.In(time.UTC)
	assert.Equal(t, utcEvening.Day(), utcLate.Day(), "sanity: same UTC day")
	assert.True(t, NeedsDateSeparator(&evening, &lateNight, loc))
}

func TestStartsSenderRun(t *testing.T) {
	a1 := msg("m1", "alice", "bob", "x", base, false)
	a2 := msg("m2", "alice", "bob", "y", base.Add(time.Minute), false)
	b1 := msg("m3", "bob", "alice", "z", base.Add(2*time.Minute), false)

	assert.True(t, StartsSenderRun(nil, &a1))
	assert.False(t, StartsSenderRun(&a1, &a2))
	assert.True(t, StartsSenderRun(&a2, &b1))
	assert.False(t, StartsSenderRun(&b1, nil))
}
