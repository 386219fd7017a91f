package delivery

import (
	"errors"
	"net/http"

	authdelivery "cafely-backend/internal/auth/delivery"
	"cafely-backend/internal/friend/usecase"

	"github.com/gin-gonic/gin"
)

// FriendHandler handles friend graph endpoints
type FriendHandler struct {
	friendUsecase usecase.FriendUsecase
}

// NewFriendHandler creates a new FriendHandler
func NewFriendHandler(friendUsecase usecase.FriendUsecase) *FriendHandler {
	return &FriendHandler{
		friendUsecase: friendUsecase,
	}
}

type sendRequestBody struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friendship, err := h.friendUsecase.SendRequest(user.ID, body.UserID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, friendship)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	friendship, err := h.friendUsecase.AcceptRequest(user.ID, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, friendship)
}

func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.friendUsecase.DeclineRequest(user.ID, c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.friendUsecase.RemoveFriend(user.ID, c.Param("userId")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	friendships, err := h.friendUsecase.Friends(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list friends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friendships})
}

func (h *FriendHandler) ListRequests(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	requests, err := h.friendUsecase.PendingRequests(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrSelfRequest),
		errors.Is(err, usecase.ErrAlreadyFriends),
		errors.Is(err, usecase.ErrAlreadyPending):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrRequestNotFound), errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotAddressee):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
