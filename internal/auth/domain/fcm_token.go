package domain

import "time"

// FCMToken represents a Firebase Cloud Messaging device token for push notifications.
// One row per (provider-issued) token; rows are the elements of the user's token set,
// so insert/delete are the atomic set union/difference the registry relies on.
type FCMToken struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	Token      string    `json:"-" gorm:"uniqueIndex;not null"` // Don't expose token in JSON
	DeviceInfo string    `json:"device_info"`                   // Browser/device metadata
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
