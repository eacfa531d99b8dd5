package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/filoshare/backend/internal/chat"
	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/database"
	"github.com/filoshare/backend/internal/handlers"
	"github.com/filoshare/backend/internal/middleware"
	"github.com/filoshare/backend/internal/models"
	"github.com/filoshare/backend/internal/services"
	"github.com/filoshare/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := models.AutoMigrate(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Object store client
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object store client: %v", err)
	}

	// Services
	emailService := services.NewEmailService(cfg)
	otpService := services.NewOTPService()
	quotaService := services.NewQuotaService(database.DB)
	uploadService := services.NewUploadService(database.DB, store, quotaService)
	linkService := services.NewLinkService(database.DB)
	chatService := services.NewChatService(database.DB)
	paymentService := services.NewPaymentService(database.DB, cfg)

	// Chat hub
	hub := chat.NewHub(chatService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "FiloShare API v1.0",
		ServerHeader: "FiloShare",
		BodyLimit:    100 * 1024 * 1024, // 100MB upload batches
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "filoshare-api",
		})
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, emailService, uploadService)
	otpHandler := handlers.NewOTPHandler(otpService, emailService)
	fileHandler := handlers.NewFileHandler(cfg, uploadService, linkService, emailService)
	bundleHandler := handlers.NewBundleHandler(linkService)
	chatHandler := handlers.NewChatHandler(chatService)
	paymentHandler := handlers.NewPaymentHandler(cfg, paymentService)
	userHandler := handlers.NewUserHandler()
	contactHandler := handlers.NewContactHandler(cfg, emailService)

	// API routes
	api := app.Group("/api")

	// Apply rate limiting to API routes (100 requests per minute)
	api.Use(middleware.RateLimiter(100, 1*time.Minute))

	// Public routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Post("/auth/forgot-password", authHandler.ForgotPassword)
	api.Post("/auth/reset-password", authHandler.ResetPassword)
	api.Post("/otp/send", otpHandler.Send)
	api.Post("/otp/verify-register", otpHandler.VerifyRegister)
	api.Post("/contact", contactHandler.Send)

	// Public share links (no identity required)
	api.Get("/files/public/:id", fileHandler.PublicFile)
	api.Post("/files/download/:id", fileHandler.Download)
	api.Get("/bundle/:bundleId", bundleHandler.Get)

	// Protected routes
	auth := api.Group("", middleware.AuthRequired(cfg))
	auth.Post("/auth/logout", authHandler.Logout)
	auth.Post("/auth/change-password", authHandler.ChangePassword)
	auth.Post("/auth/delete-account", authHandler.DeleteAccount)

	auth.Post("/files/upload", fileHandler.Upload)
	auth.Post("/files/upload-multiple", fileHandler.UploadMultiple)
	auth.Get("/files/myfiles", fileHandler.MyFiles)
	auth.Delete("/files/:id", fileHandler.Delete)
	auth.Post("/files/email", fileHandler.EmailShareLink)

	auth.Post("/chat/room", chatHandler.GetOrCreateRoom)
	auth.Get("/chat/rooms", chatHandler.GetMyRooms)
	auth.Get("/chat/messages/:roomId", chatHandler.GetMessages)

	auth.Post("/payment/order", paymentHandler.CreateOrder)
	auth.Post("/payment/verify", paymentHandler.Verify)
	auth.Get("/payment/my", paymentHandler.MyPayments)

	auth.Get("/user/me", userHandler.Me)
	auth.Get("/user/search", userHandler.Search)

	// Websocket chat gateway. The credential is checked before the
	// upgrade; a rejected connection never receives any event.
	app.Get("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		token := c.Query("token")
		if token == "" || database.IsTokenBlacklisted(token) {
			return fiber.ErrUnauthorized
		}
		claims, err := middleware.ParseToken(token, cfg)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("wsUserID", claims.UserID)
		return c.Next()
	}, websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("wsUserID").(uint)
		if !ok {
			conn.Close()
			return
		}
		hub.Serve(conn, userID)
	}))

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		app.Shutdown()
	}()

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("FiloShare API listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
