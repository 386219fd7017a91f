package usecase

import (
	"errors"
	"strings"

	cafedomain "cafely-backend/internal/cafe/domain"
	"cafely-backend/internal/cafe/repository"
)

var ErrCafeNotFound = errors.New("cafe not found")

// CafeUsecase is the application boundary for the café catalog and favorites
type CafeUsecase interface {
	CreateCafe(name, address, description string) (*cafedomain.Cafe, error)
	GetCafe(id string) (*cafedomain.Cafe, error)
	SearchCafes(query string, limit int) ([]cafedomain.Cafe, error)
	ListCafes(limit int) ([]cafedomain.Cafe, error)

	AddFavorite(userID, cafeID string) error
	RemoveFavorite(userID, cafeID string) error
	ListFavorites(userID string) ([]cafedomain.Cafe, error)
}

type cafeUsecase struct {
	cafeRepo     repository.CafeRepository
	favoriteRepo repository.FavoriteRepository
}

// NewCafeUsecase creates a new instance of cafeUsecase
func NewCafeUsecase(cafeRepo repository.CafeRepository, favoriteRepo repository.FavoriteRepository) CafeUsecase {
	return &cafeUsecase{
		cafeRepo:     cafeRepo,
		favoriteRepo: favoriteRepo,
	}
}

func (u *cafeUsecase) CreateCafe(name, address, description string) (*cafedomain.Cafe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("cafe name is required")
	}

	cafe := &cafedomain.Cafe{
		Name:        name,
		Address:     strings.TrimSpace(address),
		Description: strings.TrimSpace(description),
	}
	if err := u.cafeRepo.Create(cafe); err != nil {
		return nil, err
	}
	return cafe, nil
}

func (u *cafeUsecase) GetCafe(id string) (*cafedomain.Cafe, error) {
	cafe, err := u.cafeRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, ErrCafeNotFound
	}
	return cafe, nil
}

func (u *cafeUsecase) SearchCafes(query string, limit int) ([]cafedomain.Cafe, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []cafedomain.Cafe{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return u.cafeRepo.Search(query, limit)
}

func (u *cafeUsecase) ListCafes(limit int) ([]cafedomain.Cafe, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return u.cafeRepo.List(limit)
}

func (u *cafeUsecase) AddFavorite(userID, cafeID string) error {
	cafe, err := u.cafeRepo.FindByID(cafeID)
	if err != nil {
		return err
	}
	if cafe == nil {
		return ErrCafeNotFound
	}
	return u.favoriteRepo.Add(userID, cafeID)
}

func (u *cafeUsecase) RemoveFavorite(userID, cafeID string) error {
	return u.favoriteRepo.Remove(userID, cafeID)
}

func (u *cafeUsecase) ListFavorites(userID string) ([]cafedomain.Cafe, error) {
	favorites, err := u.favoriteRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	cafes := make([]cafedomain.Cafe, 0, len(favorites))
	for _, fav := range favorites {
		cafe, err := u.cafeRepo.FindByID(fav.CafeID)
		if err != nil {
			return nil, err
		}
		if cafe != nil {
			cafes = append(cafes, *cafe)
		}
	}
	return cafes, nil
}
