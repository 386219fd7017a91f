package delivery

import (
	"errors"
	"net/http"
	"strconv"

	authdelivery "cafely-backend/internal/auth/delivery"
	"cafely-backend/internal/cafe/usecase"

	"github.com/gin-gonic/gin"
)

// CafeHandler handles café catalog, favorites and enrichment endpoints
type CafeHandler struct {
	cafeUsecase  usecase.CafeUsecase
	enrichWorker *usecase.EnrichWorkerService
}

// NewCafeHandler creates a new CafeHandler
func NewCafeHandler(cafeUsecase usecase.CafeUsecase, enrichWorker *usecase.EnrichWorkerService) *CafeHandler {
	return &CafeHandler{
		cafeUsecase:  cafeUsecase,
		enrichWorker: enrichWorker,
	}
}

type createCafeBody struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (h *CafeHandler) CreateCafe(c *gin.Context) {
	var body createCafeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cafe, err := h.cafeUsecase.CreateCafe(body.Name, body.Address, body.Description)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cafe)
}

func (h *CafeHandler) GetCafe(c *gin.Context) {
	cafe, err := h.cafeUsecase.GetCafe(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrCafeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cafe"})
		return
	}

	c.JSON(http.StatusOK, cafe)
}

func (h *CafeHandler) ListCafes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if q := c.Query("q"); q != "" {
		cafes, err := h.cafeUsecase.SearchCafes(q, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cafes": cafes})
		return
	}

	cafes, err := h.cafeUsecase.ListCafes(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cafes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cafes": cafes})
}

// GetSummary returns the cached AI summary, or queues generation and returns
// 202; the result arrives on the requester's live connection as "cafe_summary".
func (h *CafeHandler) GetSummary(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	cafe, err := h.cafeUsecase.GetCafe(c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrCafeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cafe"})
		return
	}

	summary, tags, found, err := h.enrichWorker.GetCachedSummary(cafe.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
		return
	}
	if found {
		c.JSON(http.StatusOK, gin.H{"cafe_id": cafe.ID, "summary": summary, "tags": tags})
		return
	}

	queued := h.enrichWorker.QueueJob(usecase.EnrichJob{
		UserID: user.ID,
		CafeID: cafe.ID,
		Name:   cafe.Name,
		Text:   cafe.Description,
	})

	c.JSON(http.StatusAccepted, gin.H{"cafe_id": cafe.ID, "queued": queued})
}

func (h *CafeHandler) AddFavorite(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.cafeUsecase.AddFavorite(user.ID, c.Param("id")); err != nil {
		if errors.Is(err, usecase.ErrCafeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CafeHandler) RemoveFavorite(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.cafeUsecase.RemoveFavorite(user.ID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CafeHandler) ListFavorites(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	cafes, err := h.cafeUsecase.ListFavorites(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cafes": cafes})
}
