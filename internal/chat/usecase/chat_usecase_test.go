package usecase

import (
	"testing"
	"time"

	chatdomain "cafely-backend/internal/chat/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	messages []chatdomain.Message
	creates  int
	seq      int
}

func (f *fakeMessageRepo) Create(msg *chatdomain.Message) error {
	f.creates++
	f.seq++
	msg.ID = string(rune('a' + f.seq))
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) FindByID(id string) (*chatdomain.Message, error) {
	for i := range f.messages {
		if f.messages[i].ID == id {
			return &f.messages[i], nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) ListForUser(userID string) ([]chatdomain.Message, error) {
	var out []chatdomain.Message
	for _, m := range f.messages {
		if m.Involves(userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkConversationRead(receiverID, senderID string) error {
	for i := range f.messages {
		m := &f.messages[i]
		if m.SenderID == senderID && m.ReceiverID == receiverID {
			m.Read = true
		}
	}
	return nil
}

func (f *fakeMessageRepo) Delete(id string) error {
	for i := range f.messages {
		if f.messages[i].ID == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeMessageRepo) DeleteConversation(userA, userB string) error {
	var kept []chatdomain.Message
	for _, m := range f.messages {
		if !m.Between(userA, userB) {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeFriends struct {
	friends map[string][]string
}

func (f *fakeFriends) AcceptedFriendIDs(userID string) ([]string, error) {
	return f.friends[userID], nil
}

type fakeSink struct {
	events map[string][]string
}

func newFakeSink() *fakeSink {
	return &fakeSink{events: make(map[string][]string)}
}

func (f *fakeSink) SendToUser(userID, eventType string, _ interface{}) {
	f.events[userID] = append(f.events[userID], eventType)
}

func newTestChat(repo *fakeMessageRepo, sink *fakeSink) ChatUsecase {
	friends := &fakeFriends{friends: map[string][]string{
		"alice": {"bob"},
		"bob":   {"alice"},
	}}
	return NewChatUsecase(repo, friends, sink)
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	repo := &fakeMessageRepo{}
	uc := newTestChat(repo, newFakeSink())

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := uc.SendMessage("alice", "bob", text)
		assert.ErrorIs(t, err, chatdomain.ErrEmptyMessage)
	}

	assert.Zero(t, repo.creates, "a rejected send writes nothing")
}

func TestSendMessageRejectsSelfSend(t *testing.T) {
	repo := &fakeMessageRepo{}
	uc := newTestChat(repo, newFakeSink())

	_, err := uc.SendMessage("alice", "alice", "hi me")
	assert.ErrorIs(t, err, chatdomain.ErrSelfMessage)
	assert.Zero(t, repo.creates)
}

func TestSendMessagePushesSnapshotsToBothSides(t *testing.T) {
	repo := &fakeMessageRepo{}
	sink := newFakeSink()
	uc := newTestChat(repo, sink)

	msg, err := uc.SendMessage("alice", "bob", "coffee later?")
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, 1, repo.creates)
	assert.Equal(t, []string{"snapshot"}, sink.events["alice"])
	assert.Equal(t, []string{"snapshot"}, sink.events["bob"])
}

func TestOpenConversationClearsUnreadIdempotently(t *testing.T) {
	repo := &fakeMessageRepo{}
	sink := newFakeSink()
	uc := newTestChat(repo, sink)

	_, err := uc.SendMessage("bob", "alice", "one")
	require.NoError(t, err)
	_, err = uc.SendMessage("bob", "alice", "two")
	require.NoError(t, err)

	snap, err := uc.Snapshot("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalUnread)

	snap, err = uc.OpenConversation("alice", "bob")
	require.NoError(t, err)
	assert.Zero(t, snap.TotalUnread)

	// Opening again changes nothing
	snap, err = uc.OpenConversation("alice", "bob")
	require.NoError(t, err)
	assert.Zero(t, snap.TotalUnread)
}

func TestDeleteMessageRequiresParticipant(t *testing.T) {
	repo := &fakeMessageRepo{}
	uc := newTestChat(repo, newFakeSink())

	msg, err := uc.SendMessage("alice", "bob", "secret")
	require.NoError(t, err)

	err = uc.DeleteMessage("mallory", msg.ID)
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Len(t, repo.messages, 1)

	err = uc.DeleteMessage("bob", msg.ID)
	require.NoError(t, err)
	assert.Empty(t, repo.messages)
}

func TestDeleteMissingMessage(t *testing.T) {
	uc := newTestChat(&fakeMessageRepo{}, newFakeSink())
	assert.ErrorIs(t, uc.DeleteMessage("alice", "nope"), ErrMessageNotFound)
}

func TestClearConversationRemovesOnlyThatPair(t *testing.T) {
	repo := &fakeMessageRepo{}
	sink := newFakeSink()
	friends := &fakeFriends{friends: map[string][]string{
		"alice": {"bob", "carol"},
		"bob":   {"alice"},
		"carol": {"alice"},
	}}
	uc := NewChatUsecase(repo, friends, sink)

	_, err := uc.SendMessage("alice", "bob", "to bob")
	require.NoError(t, err)
	_, err = uc.SendMessage("alice", "carol", "to carol")
	require.NoError(t, err)

	require.NoError(t, uc.ClearConversation("alice", "bob"))

	require.Len(t, repo.messages, 1)
	assert.Equal(t, "carol", repo.messages[0].ReceiverID)
}
