package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event types written to the outbox by the domain modules.
const (
	EventMessageCreated    = "message_created"
	EventFriendshipCreated = "friendship_created"
	EventFriendshipUpdated = "friendship_updated"
)

// OutboxEvent is one domain event awaiting dispatch. Rows are appended in the
// same transaction as the primary write, so an event exists iff its write
// committed. The worker processes rows at-least-once; handlers are idempotent.
type OutboxEvent struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Type        string     `json:"type" gorm:"index;not null"`
	Payload     string     `json:"payload" gorm:"type:text;not null"`
	Attempts    int        `json:"attempts" gorm:"default:0"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	ProcessedAt *time.Time `json:"processed_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// MessageCreatedPayload is the outbox payload for a new chat message
type MessageCreatedPayload struct {
	MessageID  string    `json:"messageId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FriendshipCreatedPayload is the outbox payload for a new friendship record
type FriendshipCreatedPayload struct {
	FriendshipID string   `json:"friendshipId"`
	Users        []string `json:"users"`
	Status       string   `json:"status"`
	RequestedBy  string   `json:"requestedBy"`
}

// FriendshipUpdatedPayload carries before/after snapshots so the dispatcher can
// detect the pending→accepted edge instead of reacting to every write.
type FriendshipUpdatedPayload struct {
	FriendshipID string   `json:"friendshipId"`
	Users        []string `json:"users"`
	RequestedBy  string   `json:"requestedBy"`
	BeforeStatus string   `json:"beforeStatus"`
	AfterStatus  string   `json:"afterStatus"`
}

// AppendOutbox writes an event row inside the caller's transaction
func AppendOutbox(tx *gorm.DB, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := &OutboxEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   string(data),
		CreatedAt: time.Now(),
	}
	return tx.Create(event).Error
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	FetchUnprocessed(limit int) ([]OutboxEvent, error)
	MarkProcessed(id string) error
	IncrementAttempts(id string) error
}

type outboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new instance of outboxRepository
func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{
		db: db,
	}
}

// FetchUnprocessed returns pending events oldest-first
func (r *outboxRepository) FetchUnprocessed(limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	err := r.db.Where("processed_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(id string) error {
	now := time.Now()
	return r.db.Model(&OutboxEvent{}).
		Where("id = ?", id).
		Update("processed_at", &now).Error
}

func (r *outboxRepository) IncrementAttempts(id string) error {
	return r.db.Model(&OutboxEvent{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
