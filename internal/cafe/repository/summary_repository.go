package repository

import (
	"errors"
	"time"

	cafedomain "cafely-backend/internal/cafe/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryRepository defines the interface for the enrichment cache
type SummaryRepository interface {
	// GetByCafeID retrieves a cached summary, nil if none exists
	GetByCafeID(cafeID string) (*cafedomain.CafeSummary, error)
	// Save creates or replaces the summary for a café
	Save(cafeID, summary, tags string) error
	// Delete removes the cached summary (used when a description changes)
	Delete(cafeID string) error
}

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new instance of summaryRepository
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{
		db: db,
	}
}

func (r *summaryRepository) GetByCafeID(cafeID string) (*cafedomain.CafeSummary, error) {
	var summary cafedomain.CafeSummary
	err := r.db.Where("cafe_id = ?", cafeID).First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (r *summaryRepository) Save(cafeID, summaryText, tags string) error {
	var existing cafedomain.CafeSummary
	err := r.db.Where("cafe_id = ?", cafeID).First(&existing).Error

	now := time.Now()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary := cafedomain.CafeSummary{
			ID:        uuid.New().String(),
			CafeID:    cafeID,
			Summary:   summaryText,
			Tags:      tags,
			CreatedAt: now,
		}
		return r.db.Create(&summary).Error
	} else if err != nil {
		return err
	}

	existing.Summary = summaryText
	existing.Tags = tags
	existing.CreatedAt = now
	return r.db.Save(&existing).Error
}

func (r *summaryRepository) Delete(cafeID string) error {
	return r.db.Where("cafe_id = ?", cafeID).Delete(&cafedomain.CafeSummary{}).Error
}
