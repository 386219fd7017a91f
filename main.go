package main

import (
	"context"
	"log"
	"os"

	api "cafely-backend/cmd/api"
	authdomain "cafely-backend/internal/auth/domain"
	authRepo "cafely-backend/internal/auth/repository"
	authUsecase "cafely-backend/internal/auth/usecase"
	cafedomain "cafely-backend/internal/cafe/domain"
	cafeRepo "cafely-backend/internal/cafe/repository"
	cafeUsecase "cafely-backend/internal/cafe/usecase"
	chatdomain "cafely-backend/internal/chat/domain"
	chatRepo "cafely-backend/internal/chat/repository"
	chatUsecase "cafely-backend/internal/chat/usecase"
	frienddomain "cafely-backend/internal/friend/domain"
	friendRepo "cafely-backend/internal/friend/repository"
	friendUsecase "cafely-backend/internal/friend/usecase"
	"cafely-backend/internal/notification"
	"cafely-backend/pkg/config"
	"cafely-backend/pkg/database"
	"cafely-backend/pkg/fcm"
	"cafely-backend/pkg/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&frienddomain.Friendship{},
		&chatdomain.Message{},
		&notification.OutboxEvent{},
		&cafedomain.Cafe{},
		&cafedomain.Favorite{},
		&cafedomain.CafeSummary{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	messageRepo := chatRepo.NewMessageRepository(db)
	friendshipRepo := friendRepo.NewFriendshipRepository(db)
	cafeRepository := cafeRepo.NewCafeRepository(db)
	favoriteRepo := cafeRepo.NewFavoriteRepository(db)
	summaryRepo := cafeRepo.NewSummaryRepository(db)
	outboxRepo := notification.NewOutboxRepository(db)

	// Initialize WebSocket hub for live snapshots
	hub := ws.NewHub()
	go hub.Run()

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg)
	friendUsecaseInstance := friendUsecase.NewFriendUsecase(friendshipRepo, userRepo)
	chatUsecaseInstance := chatUsecase.NewChatUsecase(messageRepo, friendUsecaseInstance, hub)
	cafeUsecaseInstance := cafeUsecase.NewCafeUsecase(cafeRepository, favoriteRepo)

	// Friendship changes reshape both users' conversation lists
	friendUsecaseInstance.SetChangeCallback(chatUsecaseInstance.PushSnapshots)

	// Initialize push notification pipeline (outbox worker + FCM dispatcher).
	// Only started when Firebase credentials are configured.
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			dispatcher := notification.NewDispatcher(userRepo, fcmTokenRepo, fcmClient, cfg.PushSendTimeout)
			worker := notification.NewWorker(outboxRepo, dispatcher, cfg.OutboxPollInterval)
			go worker.Start(context.Background())
			log.Println("[Outbox] Notification worker started")
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, push notifications disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, chatUsecaseInstance, friendUsecaseInstance, cafeUsecaseInstance, hub, cfg, summaryRepo)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
