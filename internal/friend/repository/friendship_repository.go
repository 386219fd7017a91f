package repository

import (
	"errors"
	"time"

	frienddomain "cafely-backend/internal/friend/domain"
	"cafely-backend/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship persistence.
// Create and Accept append their outbox event in the same transaction as the
// row write, so a notification event exists iff the friendship write committed.
type FriendshipRepository interface {
	Create(f *frienddomain.Friendship) error
	FindByID(id string) (*frienddomain.Friendship, error)
	FindByPair(userA, userB string) (*frienddomain.Friendship, error)
	Accept(f *frienddomain.Friendship) error
	Delete(id string) error
	ListAcceptedFor(userID string) ([]frienddomain.Friendship, error)
	ListPendingFor(userID string) ([]frienddomain.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository creates a new instance of friendshipRepository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{
		db: db,
	}
}

func (r *friendshipRepository) Create(f *frienddomain.Friendship) error {
	f.ID = uuid.New().String()
	f.User1ID, f.User2ID = frienddomain.NormalizePair(f.User1ID, f.User2ID)
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(f).Error; err != nil {
			return err
		}
		return notification.AppendOutbox(tx, notification.EventFriendshipCreated, notification.FriendshipCreatedPayload{
			FriendshipID: f.ID,
			Users:        []string{f.User1ID, f.User2ID},
			Status:       f.Status,
			RequestedBy:  f.RequestedBy,
		})
	})
}

func (r *friendshipRepository) FindByID(id string) (*frienddomain.Friendship, error) {
	var f frienddomain.Friendship
	err := r.db.Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) FindByPair(userA, userB string) (*frienddomain.Friendship, error) {
	u1, u2 := frienddomain.NormalizePair(userA, userB)
	var f frienddomain.Friendship
	err := r.db.Where("user1_id = ? AND user2_id = ?", u1, u2).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

// Accept flips the record to accepted and records the before/after edge in the
// outbox event for the dispatcher's edge detection.
func (r *friendshipRepository) Accept(f *frienddomain.Friendship) error {
	before := f.Status
	f.Status = frienddomain.StatusAccepted
	f.UpdatedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(f).Error; err != nil {
			return err
		}
		return notification.AppendOutbox(tx, notification.EventFriendshipUpdated, notification.FriendshipUpdatedPayload{
			FriendshipID: f.ID,
			Users:        []string{f.User1ID, f.User2ID},
			RequestedBy:  f.RequestedBy,
			BeforeStatus: before,
			AfterStatus:  f.Status,
		})
	})
}

func (r *friendshipRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&frienddomain.Friendship{}).Error
}

func (r *friendshipRepository) ListAcceptedFor(userID string) ([]frienddomain.Friendship, error) {
	var friendships []frienddomain.Friendship
	err := r.db.Where("status = ? AND (user1_id = ? OR user2_id = ?)", frienddomain.StatusAccepted, userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}

// ListPendingFor returns requests addressed to the user (not ones they sent)
func (r *friendshipRepository) ListPendingFor(userID string) ([]frienddomain.Friendship, error) {
	var friendships []frienddomain.Friendship
	err := r.db.Where("status = ? AND requested_by <> ? AND (user1_id = ? OR user2_id = ?)",
		frienddomain.StatusPending, userID, userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}
	return friendships, nil
}
