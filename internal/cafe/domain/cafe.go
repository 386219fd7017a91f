package domain

import "time"

// Cafe is one catalog entry. Description holds the raw text (owner blurb,
// scraped details) that the enrichment pipeline summarizes.
type Cafe struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"index;not null"`
	Address     string    `json:"address"`
	Description string    `json:"description" gorm:"type:text"`
	Tags        string    `json:"tags"` // comma-separated lowercase tags
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Favorite marks a café saved by a user
type Favorite struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_user_cafe;not null"`
	CafeID    string    `json:"cafe_id" gorm:"uniqueIndex:idx_user_cafe;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CafeSummary stores cached AI-generated summaries so each café is enriched
// at most once until its description changes
type CafeSummary struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CafeID    string    `json:"cafe_id" gorm:"uniqueIndex;not null"`
	Summary   string    `json:"summary" gorm:"type:text"`
	Tags      string    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (CafeSummary) TableName() string {
	return "cafe_summaries"
}
