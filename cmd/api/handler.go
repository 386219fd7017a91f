package api

import (
	"log"

	authUsecase "cafely-backend/internal/auth/usecase"
	cafeDelivery "cafely-backend/internal/cafe/delivery"
	cafeRepo "cafely-backend/internal/cafe/repository"
	cafeUsecasePkg "cafely-backend/internal/cafe/usecase"
	chatDelivery "cafely-backend/internal/chat/delivery"
	chatUsecasePkg "cafely-backend/internal/chat/usecase"
	friendUsecasePkg "cafely-backend/internal/friend/usecase"
	"cafely-backend/pkg/ai"
	"cafely-backend/pkg/config"
	"cafely-backend/pkg/ws"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	chatUsecase   chatUsecasePkg.ChatUsecase
	friendUsecase friendUsecasePkg.FriendUsecase
	hub           *ws.Hub
	config        *config.Config
	chatHandler   *chatDelivery.ChatHandler
	cafeHandler   *cafeDelivery.CafeHandler
	enrichWorker  *cafeUsecasePkg.EnrichWorkerService
}

func NewHandler(authUc authUsecase.AuthUsecase, chatUc chatUsecasePkg.ChatUsecase, friendUc friendUsecasePkg.FriendUsecase, cafeUc cafeUsecasePkg.CafeUsecase, hub *ws.Hub, cfg *config.Config, summaryRepo cafeRepo.SummaryRepository) *Handler {
	// Initialize AI enrichment service
	aiService, err := ai.NewEnrichmentService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiApiKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize AI service: %v", err)
	} else {
		log.Printf("AI service initialized with provider: %s", cfg.AIProvider)
	}

	// Background workers for café summaries; results land on the requester's
	// live connection as cafe_summary events
	enrichWorker := cafeUsecasePkg.NewEnrichWorkerService(summaryRepo, aiService, hub, cfg.EnrichWorkerCount)
	enrichWorker.Start()

	return &Handler{
		authUsecase:   authUc,
		chatUsecase:   chatUc,
		friendUsecase: friendUc,
		hub:           hub,
		config:        cfg,
		chatHandler:   chatDelivery.NewChatHandler(chatUc, hub),
		cafeHandler:   cafeDelivery.NewCafeHandler(cafeUc, enrichWorker),
		enrichWorker:  enrichWorker,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Setup routes
	SetupRoutes(r, h.authUsecase, h.friendUsecase, h.chatHandler, h.cafeHandler)

	return r.Run(addr)
}
