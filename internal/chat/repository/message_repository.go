package repository

import (
	"errors"
	"time"

	chatdomain "cafely-backend/internal/chat/domain"
	"cafely-backend/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for the durable message log
type MessageRepository interface {
	Create(msg *chatdomain.Message) error
	FindByID(id string) (*chatdomain.Message, error)
	ListForUser(userID string) ([]chatdomain.Message, error)
	MarkConversationRead(receiverID, senderID string) error
	Delete(id string) error
	DeleteConversation(userA, userB string) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// Create appends the message and its notification event in one transaction.
// ID and timestamp are assigned here, not by the caller.
func (r *messageRepository) Create(msg *chatdomain.Message) error {
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()
	msg.Read = false

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return notification.AppendOutbox(tx, notification.EventMessageCreated, notification.MessageCreatedPayload{
			MessageID:  msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			Text:       msg.Text,
			CreatedAt:  msg.CreatedAt,
		})
	})
}

func (r *messageRepository) FindByID(id string) (*chatdomain.Message, error) {
	var msg chatdomain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListForUser returns the viewer's full message set ordered by (created_at, id);
// the id tie-break keeps the order stable across deletes and equal timestamps.
func (r *messageRepository) ListForUser(userID string) ([]chatdomain.Message, error) {
	var messages []chatdomain.Message
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkConversationRead flips the unread messages from sender to receiver. The
// WHERE clause makes it idempotent: re-running matches zero rows and is a no-op.
func (r *messageRepository) MarkConversationRead(receiverID, senderID string) error {
	return r.db.Model(&chatdomain.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", receiverID, senderID, false).
		Update("read", true).Error
}

// Delete hard-removes a message; there are no tombstones
func (r *messageRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&chatdomain.Message{}).Error
}

// DeleteConversation hard-removes every message between the pair
func (r *messageRepository) DeleteConversation(userA, userB string) error {
	return r.db.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA).
		Delete(&chatdomain.Message{}).Error
}
