package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"proconnect/backend/internal/auth"
	"proconnect/backend/internal/bot"
	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/config"
	"proconnect/backend/internal/connections"
	"proconnect/backend/internal/conversation"
	"proconnect/backend/internal/database"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/handler"
	"proconnect/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "proconnect/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	sessionSweepInterval = 5 * time.Minute
	cacheSweepInterval   = 10 * time.Minute
)

func init() {
	config.LoadConfig()
}

// @title           ProConnect API
// @version         1.0
// @description     Professional networking backend: profiles and connections.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Shared single-instance components, passed by reference to handlers.
	dir := directory.NewGorm(database.DB)
	appCache := cache.New()
	limiter := ratelimit.New()
	sessions := conversation.NewSessionStore()
	engine := conversation.NewEngine(sessions, dir, appCache)
	manager := connections.NewManager(dir, appCache)
	router := bot.NewRouter(limiter, engine, manager, dir, appCache)

	startSweeps(sessions, limiter, appCache)

	h := handler.New(dir, manager, appCache)
	r := gin.Default()

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Cache stats for operators
	r.GET("/stats/cache", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.GetStats())
	})

	// Inbound chat messages from the transport integration. The reply text
	// is returned synchronously for the transport to deliver.
	r.POST("/webhook/message", func(c *gin.Context) {
		var msg struct {
			UserID uint   `json:"user_id" binding:"required"`
			Text   string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reply, err := router.HandleText(c.Request.Context(), msg.UserID, msg.Text)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to handle message"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reply": reply})
	})

	// API v1 routes
	apiV1 := r.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", h.Login)
		}

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware())
		{
			userRoutes.GET("", h.SearchUsers) // Must be before /:id
			userRoutes.GET("/me", h.GetMe)
			userRoutes.GET("/me/requests", h.GetPendingRequests)
			userRoutes.GET("/me/connections", h.GetConnections)
			userRoutes.GET("/:id", h.GetUser)
			userRoutes.GET("/:id/mutual", h.GetMutualConnections)

			// Connection lifecycle routes
			userRoutes.POST("/:id/request", h.SendRequest)
			userRoutes.POST("/:id/accept", h.AcceptRequest)
			userRoutes.POST("/:id/decline", h.DeclineRequest)
			userRoutes.POST("/:id/remove", h.RemoveConnection)
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ListenAddr)
	fmt.Println("Swagger UI is available at /swagger/index.html")
	log.Fatal(r.Run(config.AppConfig.ListenAddr))
}

// startSweeps launches the periodic cleanup goroutines. Sweeps only remove
// entries that are already logically expired, so they are safe alongside
// foreground reads and writes.
func startSweeps(sessions *conversation.SessionStore, limiter *ratelimit.Limiter, appCache *cache.Cache) {
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.Sweep(); n > 0 {
				log.Printf("reaped %d expired sessions", n)
			}
			limiter.Cleanup()
		}
	}()

	go func() {
		ticker := time.NewTicker(cacheSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			appCache.Sweep()
		}
	}()
}
