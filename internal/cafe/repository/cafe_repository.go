package repository

import (
	"errors"
	"time"

	cafedomain "cafely-backend/internal/cafe/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CafeRepository defines the interface for the café catalog
type CafeRepository interface {
	Create(cafe *cafedomain.Cafe) error
	FindByID(id string) (*cafedomain.Cafe, error)
	Search(query string, limit int) ([]cafedomain.Cafe, error)
	List(limit int) ([]cafedomain.Cafe, error)
}

type cafeRepository struct {
	db *gorm.DB
}

// NewCafeRepository creates a new instance of cafeRepository
func NewCafeRepository(db *gorm.DB) CafeRepository {
	return &cafeRepository{
		db: db,
	}
}

func (r *cafeRepository) Create(cafe *cafedomain.Cafe) error {
	cafe.ID = uuid.New().String()
	cafe.CreatedAt = time.Now()
	cafe.UpdatedAt = time.Now()
	return r.db.Create(cafe).Error
}

func (r *cafeRepository) FindByID(id string) (*cafedomain.Cafe, error) {
	var cafe cafedomain.Cafe
	err := r.db.Where("id = ?", id).First(&cafe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cafe, nil
}

// Search matches name or tags, case-insensitively
func (r *cafeRepository) Search(query string, limit int) ([]cafedomain.Cafe, error) {
	var cafes []cafedomain.Cafe
	pattern := "%" + query + "%"
	err := r.db.Where("name ILIKE ? OR tags ILIKE ?", pattern, pattern).
		Limit(limit).
		Find(&cafes).Error
	if err != nil {
		return nil, err
	}
	return cafes, nil
}

func (r *cafeRepository) List(limit int) ([]cafedomain.Cafe, error) {
	var cafes []cafedomain.Cafe
	err := r.db.Order("name ASC").Limit(limit).Find(&cafes).Error
	if err != nil {
		return nil, err
	}
	return cafes, nil
}

// FavoriteRepository defines the interface for user favorites
type FavoriteRepository interface {
	Add(userID, cafeID string) error
	Remove(userID, cafeID string) error
	ListByUser(userID string) ([]cafedomain.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new instance of favoriteRepository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{
		db: db,
	}
}

// Add is an idempotent insert; favoriting twice is a no-op
func (r *favoriteRepository) Add(userID, cafeID string) error {
	favorite := &cafedomain.Favorite{
		ID:        uuid.New().String(),
		UserID:    userID,
		CafeID:    cafeID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "cafe_id"}},
		DoNothing: true,
	}).Create(favorite).Error
}

func (r *favoriteRepository) Remove(userID, cafeID string) error {
	return r.db.Where("user_id = ? AND cafe_id = ?", userID, cafeID).Delete(&cafedomain.Favorite{}).Error
}

func (r *favoriteRepository) ListByUser(userID string) ([]cafedomain.Favorite, error) {
	var favorites []cafedomain.Favorite
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
