package main

import (
	"fmt"
	"log"

	"hue-chat/config"
	"hue-chat/internal/domain/friend"
	"hue-chat/internal/domain/message"
	"hue-chat/internal/domain/user"
	"hue-chat/internal/handler"
	"hue-chat/internal/middleware"
	"hue-chat/internal/redis"
	"hue-chat/internal/repository"
	"hue-chat/internal/services"
	"hue-chat/pkg/database"
	"hue-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == gin.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&user.Session{},
		&friend.Request{},
		&friend.Friendship{},
		&message.Message{},
		&message.Reaction{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	limiter := redis.NewRateLimiter(redis.GetClient(), redis.DefaultRateLimitConfig())

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	typing := services.NewTypingRegistry(cfg.TypingIdle, nil)
	authService := services.NewAuthService(db, userRepo, sessionRepo, friendRepo, messageRepo, typing, cfg)
	presenceService := services.NewPresenceService(sessionRepo, cfg)
	friendService := services.NewFriendService(db, friendRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, friendRepo, typing, l, cfg)
	syncService := services.NewSyncService(messageService, presenceService, typing)
	previewService := services.NewLinkPreviewService(cfg.PreviewTimeout)

	authHandler := handler.NewAuthHandler(authService)
	messageHandler := handler.NewMessageHandler(messageService, previewService)
	friendHandler := handler.NewFriendHandler(friendService)
	syncHandler := handler.NewSyncHandler(syncService, presenceService, typing)

	gin.SetMode(cfg.AppMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(l))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	v1 := r.Group("/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware(limiter))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(authService))

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/logout", authHandler.Logout)
	authed.DELETE("/auth/account", authHandler.DeleteAccount)
	authed.GET("/users", authHandler.Users)

	messages := authed.Group("/messages")
	messages.POST("", middleware.MessageRateLimitMiddleware(limiter), messageHandler.Post)
	messages.PUT("/:id", messageHandler.Edit)
	messages.DELETE("/:id", messageHandler.Delete)
	messages.GET("/search", messageHandler.Search)
	messages.POST("/:id/reactions", messageHandler.React)
	messages.DELETE("/:id/reactions", messageHandler.Unreact)

	authed.POST("/preview", messageHandler.Preview)

	friends := authed.Group("/friends")
	friends.GET("", friendHandler.List)
	friends.DELETE("", friendHandler.Remove)
	friends.PUT("/nickname", friendHandler.SetNickname)
	friends.POST("/requests", friendHandler.SendRequest)
	friends.GET("/requests", friendHandler.PendingRequests)
	friends.POST("/requests/:id/accept", friendHandler.Accept)
	friends.POST("/requests/:id/reject", friendHandler.Reject)

	authed.GET("/sync", syncHandler.Poll)
	authed.GET("/presence/online", syncHandler.OnlineUsers)
	authed.GET("/presence/active", syncHandler.ActiveUsers)
	authed.POST("/typing", syncHandler.MarkTyping)
	authed.DELETE("/typing", syncHandler.ClearTyping)
	authed.GET("/typing", syncHandler.TypingUsers)

	l.Infof("Starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
