package api

import (
	"net/http"

	"cafely-backend/internal/auth/delivery"
	authUsecase "cafely-backend/internal/auth/usecase"
	cafeDelivery "cafely-backend/internal/cafe/delivery"
	chatDelivery "cafely-backend/internal/chat/delivery"
	friendDelivery "cafely-backend/internal/friend/delivery"
	friendUsecasePkg "cafely-backend/internal/friend/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, friendUsecase friendUsecasePkg.FriendUsecase, chatHandler *chatDelivery.ChatHandler, cafeHandler *cafeDelivery.CafeHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	friendHandler := friendDelivery.NewFriendHandler(friendUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
			auth.POST("/logout", authHandler.Logout)
		}

		// User search (protected)
		api.GET("/users/search", delivery.AuthMiddleware(authUsecase), authHandler.SearchUsers)

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(delivery.AuthMiddleware(authUsecase))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Friend routes (protected)
		friends := api.Group("/friends")
		friends.Use(delivery.AuthMiddleware(authUsecase))
		{
			friends.GET("", friendHandler.ListFriends)
			friends.GET("/requests", friendHandler.ListRequests)
			friends.POST("/requests", friendHandler.SendRequest)
			friends.POST("/requests/:id/accept", friendHandler.AcceptRequest)
			friends.DELETE("/requests/:id", friendHandler.DeclineRequest)
			friends.DELETE("/:userId", friendHandler.RemoveFriend)
		}

		// Chat routes (protected); /ws is the live snapshot subscription
		chat := api.Group("/chat")
		chat.Use(delivery.AuthMiddleware(authUsecase))
		{
			chat.GET("/ws", chatHandler.Subscribe)
			chat.GET("/snapshot", chatHandler.GetSnapshot)
			chat.POST("/messages", chatHandler.SendMessage)
			chat.POST("/conversations/:peerId/open", chatHandler.OpenConversation)
			chat.DELETE("/messages/:id", chatHandler.DeleteMessage)
			chat.DELETE("/conversations/:peerId", chatHandler.ClearConversation)
		}

		// Café routes (protected)
		cafes := api.Group("/cafes")
		cafes.Use(delivery.AuthMiddleware(authUsecase))
		{
			cafes.GET("", cafeHandler.ListCafes)
			cafes.POST("", cafeHandler.CreateCafe)
			cafes.GET("/:id", cafeHandler.GetCafe)
			cafes.GET("/:id/summary", cafeHandler.GetSummary)
			cafes.POST("/:id/favorite", cafeHandler.AddFavorite)
			cafes.DELETE("/:id/favorite", cafeHandler.RemoveFavorite)
		}

		// Favorites list (protected)
		api.GET("/favorites", delivery.AuthMiddleware(authUsecase), cafeHandler.ListFavorites)
	}
}
