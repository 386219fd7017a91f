package domain

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

// Friendship links exactly two users. The pair is stored in canonical order
// (User1ID < User2ID) so one row represents the unordered pair and the unique
// index holds regardless of who initiated.
type Friendship struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	User1ID     string    `json:"user1_id" gorm:"uniqueIndex:idx_friend_pair;not null"`
	User2ID     string    `json:"user2_id" gorm:"uniqueIndex:idx_friend_pair;not null"`
	Status      string    `json:"status" gorm:"index;not null"`
	RequestedBy string    `json:"requested_by" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizePair returns the two ids in canonical storage order
func NormalizePair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// OtherUser returns the participant that is not the given user
func (f *Friendship) OtherUser(userID string) string {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}

// Involves reports whether the user is one of the two participants
func (f *Friendship) Involves(userID string) bool {
	return f.User1ID == userID || f.User2ID == userID
}
