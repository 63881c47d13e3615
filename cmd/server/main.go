package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/TuongNguyen09/web-chat/internal/cache"
	"github.com/TuongNguyen09/web-chat/internal/handlers"
	wshub "github.com/TuongNguyen09/web-chat/internal/handlers/ws"
	"github.com/TuongNguyen09/web-chat/internal/middleware"
	"github.com/TuongNguyen09/web-chat/internal/repository"
	"github.com/TuongNguyen09/web-chat/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		AppName: "Web Chat Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-WC-CSRF",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis. Presence, typing and unread state all live there,
	// so unlike the DB cache path this is not optional.
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}
	store := cache.NewRedisCache(redisAddr, redisPassword, redisDB, os.Getenv("REDIS_NAMESPACE"))
	if err := store.Ping(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	log.Println("Redis connected successfully")

	userCache := cache.NewUserCache(store)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	readStateRepo := repository.NewChatReadStateRepository(db)

	// Initialize the hub and services
	hub := wshub.NewHub()
	tokenService := service.NewTokenService(store)
	authService := service.NewAuthService(userRepo, tokenService)
	userService := service.NewUserService(userRepo, userCache)
	presenceService := service.NewPresenceService(store, userRepo, userCache, hub)
	typingService := service.NewTypingService(store, chatRepo, userRepo, userCache, hub)
	unreadService := service.NewUnreadService(store, hub)
	readStateService := service.NewReadStateService(readStateRepo, chatRepo, messageRepo, unreadService)
	chatService := service.NewChatService(chatRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, chatRepo, unreadService, hub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, tokenService.RefreshTTL())
	userHandler := handlers.NewUserHandler(userService)
	presenceHandler := handlers.NewPresenceHandler(presenceService, userService)
	typingHandler := handlers.NewTypingHandler(typingService)
	unreadHandler := handlers.NewUnreadHandler(unreadService, readStateService)
	chatHandler := handlers.NewChatHandler(chatService, messageService)
	wsHandler := handlers.NewWebSocketHandler(hub, presenceService, typingService, chatService)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed())
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRF)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh) // No CSRF required - protected by HttpOnly refresh token
	auth.Post("/logout", middleware.CSRFRequired(), authHandler.Logout)
	auth.Post("/introspect", middleware.AuthRequired(tokenService), authHandler.Introspect)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(tokenService), middleware.CSRFRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Get("/presence/online", presenceHandler.GetAllOnline)
	protected.Get("/presence/:id", presenceHandler.GetPresence)
	protected.Get("/typing/:chatId", typingHandler.GetActiveTypers)
	protected.Get("/unread", unreadHandler.GetAll)
	protected.Post("/chats", chatHandler.CreateChat)
	protected.Get("/chats", chatHandler.GetMyChats)
	protected.Post("/chats/:id/members", chatHandler.AddMember)
	protected.Delete("/chats/:id/members/:userId", chatHandler.RemoveMember)
	protected.Post("/chats/:id/messages", chatHandler.SendMessage)
	protected.Get("/chats/:id/messages", chatHandler.GetMessages)
	protected.Post("/chats/:id/read", unreadHandler.MarkRead)
	protected.Get("/chats/:id/read-state", unreadHandler.GetChatReadState)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(tokenService),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
