package http

import (
	"net/http"

	"cloudinbox/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, authHandler *AuthHandler, chatHandler *ChatHandler, catalogHandler *CatalogHandler, middleware *Middleware) {
	// Apply Security Middleware
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(10 << 20)) // 10MB max request size
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Auth Routes
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", middleware.AuthRequired(), authHandler.Me)
	}

	// Protected Inbox Routes
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.RateLimitPerUser(5, 10))
	{
		api.GET("/conversations", chatHandler.ListConversations)

		api.GET("/chat-histories", chatHandler.ListHistories)
		api.GET("/chat-histories/:sessionId", chatHandler.GetSessionHistories)
		api.PATCH("/chat-histories/:sessionId/read", chatHandler.MarkRead)
		api.POST("/chat-histories/:sessionId/reply", chatHandler.Reply)

		api.GET("/catalog-metadata/latest", catalogHandler.Latest)
	}

	// Unmatched API paths get a JSON 404, not gin's default page
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found: " + c.Request.URL.Path})
	})
}
