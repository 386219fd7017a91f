package delivery

import (
	"errors"
	"log"
	"net/http"

	authdelivery "cafely-backend/internal/auth/delivery"
	chatdomain "cafely-backend/internal/chat/domain"
	"cafely-backend/internal/chat/usecase"
	"cafely-backend/pkg/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatHandler handles messaging endpoints and the live subscription socket
type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	hub         *ws.Hub
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUsecase usecase.ChatUsecase, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		hub:         hub,
	}
}

type sendMessageBody struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Text       string `json:"text"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chatUsecase.SendMessage(user.ID, body.ReceiverID, body.Text)
	if err != nil {
		if errors.Is(err, chatdomain.ErrEmptyMessage) || errors.Is(err, chatdomain.ErrSelfMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetSnapshot returns the viewer's full projected state over REST; the
// websocket delivers the same shape on every subsequent change.
func (h *ChatHandler) GetSnapshot(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	snapshot, err := h.chatUsecase.Snapshot(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// OpenConversation marks the conversation read and returns the fresh snapshot
func (h *ChatHandler) OpenConversation(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	snapshot, err := h.chatUsecase.OpenConversation(user.ID, c.Param("peerId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open conversation"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.chatUsecase.DeleteMessage(user.ID, c.Param("id")); err != nil {
		if errors.Is(err, usecase.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ChatHandler) ClearConversation(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	if err := h.chatUsecase.ClearConversation(user.ID, c.Param("peerId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Subscribe upgrades to a websocket and delivers the initial snapshot, then a
// fresh one on every relevant write. The subscription lives until the socket
// closes; a dead socket is the staleness signal.
func (h *ChatHandler) Subscribe(c *gin.Context) {
	user := authdelivery.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Chat] WebSocket upgrade failed for %s: %v", user.ID, err)
		return
	}

	client := ws.NewClient(h.hub, conn, user.ID)
	go client.WritePump()
	go client.ReadPump()

	// Initial full snapshot so the client renders without a second round trip
	h.chatUsecase.PushSnapshots(user.ID)
}
