package domain

import "time"

type User struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"uniqueIndex;not null"`
	Password    string `json:"-"` // Never return password in JSON
	Username    string `json:"username" gorm:"uniqueIndex"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Provider    string `json:"provider"` // "email" or "google"

	// Gates push delivery even when device tokens exist
	NotificationsEnabled bool `json:"notifications_enabled" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index"`
	ExpiresAt time.Time `json:"expires_at"`
}
