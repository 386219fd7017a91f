package usecase

import (
	"errors"
	"log"
	"strings"

	chatdomain "cafely-backend/internal/chat/domain"
	"cafely-backend/internal/chat/repository"
)

var ErrMessageNotFound = errors.New("message not found")

// FriendLister resolves the viewer's accepted friends for the projection
type FriendLister interface {
	AcceptedFriendIDs(userID string) ([]string, error)
}

// SnapshotSink receives projected snapshots for live delivery
type SnapshotSink interface {
	SendToUser(userID, eventType string, payload interface{})
}

// ChatUsecase is the application boundary for the message log and the live
// conversation projection.
type ChatUsecase interface {
	SendMessage(senderID, receiverID, text string) (*chatdomain.Message, error)
	Snapshot(userID string) (*chatdomain.Snapshot, error)
	OpenConversation(userID, peerID string) (*chatdomain.Snapshot, error)
	DeleteMessage(userID, messageID string) error
	ClearConversation(userID, peerID string) error
	PushSnapshots(userIDs ...string)
}

type chatUsecase struct {
	messageRepo repository.MessageRepository
	friends     FriendLister
	sink        SnapshotSink
}

// NewChatUsecase creates a new instance of chatUsecase
func NewChatUsecase(messageRepo repository.MessageRepository, friends FriendLister, sink SnapshotSink) ChatUsecase {
	return &chatUsecase{
		messageRepo: messageRepo,
		friends:     friends,
		sink:        sink,
	}
}

// SendMessage validates and appends a message. Validation failures reject the
// send before anything is written, so the caller keeps its draft; notification
// delivery happens downstream of the outbox and can never fail this call.
func (u *chatUsecase) SendMessage(senderID, receiverID, text string) (*chatdomain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, chatdomain.ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, chatdomain.ErrSelfMessage
	}

	msg := &chatdomain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}
	if err := u.messageRepo.Create(msg); err != nil {
		return nil, err
	}

	u.PushSnapshots(senderID, receiverID)
	return msg, nil
}

// Snapshot recomputes the viewer's full projection
func (u *chatUsecase) Snapshot(userID string) (*chatdomain.Snapshot, error) {
	friendIDs, err := u.friends.AcceptedFriendIDs(userID)
	if err != nil {
		return nil, err
	}

	messages, err := u.messageRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	return BuildSnapshot(userID, friendIDs, messages), nil
}

// OpenConversation marks the peer's unread messages read (idempotently) and
// returns a fresh snapshot. Called when a conversation becomes the foreground
// one, not on scroll.
func (u *chatUsecase) OpenConversation(userID, peerID string) (*chatdomain.Snapshot, error) {
	if err := u.messageRepo.MarkConversationRead(userID, peerID); err != nil {
		return nil, err
	}

	// The peer sees read receipts; the viewer sees the badge clear
	u.PushSnapshots(peerID)

	snapshot, err := u.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	u.push(userID, snapshot)
	return snapshot, nil
}

// DeleteMessage hard-removes one message owned by either participant
func (u *chatUsecase) DeleteMessage(userID, messageID string) error {
	msg, err := u.messageRepo.FindByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil || !msg.Involves(userID) {
		return ErrMessageNotFound
	}

	if err := u.messageRepo.Delete(messageID); err != nil {
		return err
	}

	u.PushSnapshots(msg.SenderID, msg.ReceiverID)
	return nil
}

// ClearConversation hard-removes the whole history with one peer
func (u *chatUsecase) ClearConversation(userID, peerID string) error {
	if err := u.messageRepo.DeleteConversation(userID, peerID); err != nil {
		return err
	}

	u.PushSnapshots(userID, peerID)
	return nil
}

// PushSnapshots recomputes and delivers fresh snapshots to the given viewers.
// Errors are logged, never propagated: live delivery is best-effort and must
// not fail the write that triggered it.
func (u *chatUsecase) PushSnapshots(userIDs ...string) {
	if u.sink == nil {
		return
	}
	for _, userID := range userIDs {
		snapshot, err := u.Snapshot(userID)
		if err != nil {
			log.Printf("[Chat] Failed to build snapshot for %s: %v", userID, err)
			continue
		}
		u.push(userID, snapshot)
	}
}

func (u *chatUsecase) push(userID string, snapshot *chatdomain.Snapshot) {
	if u.sink != nil {
		u.sink.SendToUser(userID, "snapshot", snapshot)
	}
}
