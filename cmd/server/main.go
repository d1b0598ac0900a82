package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ravin009/chatfun-sub000/internal/config"
	"github.com/ravin009/chatfun-sub000/internal/database"
	"github.com/ravin009/chatfun-sub000/internal/handlers"
	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/repository"
	cronjobs "github.com/ravin009/chatfun-sub000/internal/scheduler"
	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
	"github.com/ravin009/chatfun-sub000/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	chatRepo := repository.NewChatRepository(db)
	privateMessageRepo := repository.NewPrivateMessageRepository(db)
	otpRepo := repository.NewOtpRepository(db)
	defaultRoomRepo := repository.NewDefaultRoomRepository(db)

	// --- Socket hub ---
	hub := ws.NewHub()

	// --- Services ---
	otpService := services.NewOtpService(otpRepo)
	userService := services.NewUserService(userRepo, otpService)
	presenceService := services.NewPresenceService(userRepo, hub)
	roomService := services.NewRoomService(roomRepo, userRepo, chatRepo, defaultRoomRepo, hub)
	chatService := services.NewChatService(chatRepo, userRepo, roomRepo)
	privateMessageService := services.NewPrivateMessageService(privateMessageRepo, userRepo, hub)

	// Clear presence left over from a previous run
	if err := presenceService.ResetAll(context.Background()); err != nil {
		logger.Log.Warnf("Failed to reset presence state: %v", err)
	}

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	roomHandler := handlers.NewRoomHandler(roomService)
	chatHandler := handlers.NewChatHandler(chatService, cfg.UploadDir)
	privateMessageHandler := handlers.NewPrivateMessageHandler(privateMessageService)
	socketHandler := handlers.NewSocketHandler(hub, presenceService, roomService, chatService, privateMessageService, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/api/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/api/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/api/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/api/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/api/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/{id}/block", userHandler.BlockUserHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/{id}/block", userHandler.UnblockUserHandler).Methods("DELETE")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/api/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFriendRoutes.HandleFunc("", userHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", userHandler.AddFriendHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/{id}", userHandler.RemoveFriendHandler).Methods("DELETE")

	// Room routes
	protectedRoomRoutes := router.PathPrefix("/api/rooms").Subrouter()
	protectedRoomRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoomRoutes.HandleFunc("", roomHandler.CreateRoomHandler).Methods("POST")
	protectedRoomRoutes.HandleFunc("", roomHandler.ListRoomsHandler).Methods("GET")
	protectedRoomRoutes.HandleFunc("/default", roomHandler.GetDefaultRoomHandler).Methods("GET")
	protectedRoomRoutes.HandleFunc("/{roomId}", roomHandler.GetRoomHandler).Methods("GET")
	protectedRoomRoutes.HandleFunc("/{roomId}", roomHandler.DeleteRoomHandler).Methods("DELETE")
	protectedRoomRoutes.HandleFunc("/{roomId}/owner", roomHandler.TransferOwnershipHandler).Methods("PUT")
	protectedRoomRoutes.HandleFunc("/{roomId}/privacy", roomHandler.SetPrivacyHandler).Methods("PUT")
	protectedRoomRoutes.HandleFunc("/{roomId}/color", roomHandler.SetColorHandler).Methods("PUT")
	protectedRoomRoutes.HandleFunc("/{roomId}/read-only", roomHandler.SetReadOnlyHandler).Methods("POST")
	protectedRoomRoutes.HandleFunc("/{roomId}/read-only", roomHandler.RemoveReadOnlyHandler).Methods("DELETE")
	protectedRoomRoutes.HandleFunc("/{roomId}/invite", roomHandler.InviteHandler).Methods("POST")
	protectedRoomRoutes.HandleFunc("/{roomId}/accept-invitation", roomHandler.AcceptInvitationHandler).Methods("POST")

	// Chat routes
	protectedChatRoutes := router.PathPrefix("/api/chat").Subrouter()
	protectedChatRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedChatRoutes.HandleFunc("/send", chatHandler.SendMessageHandler).Methods("POST")
	protectedChatRoutes.HandleFunc("/send-image", chatHandler.SendImageHandler).Methods("POST")
	protectedChatRoutes.HandleFunc("/{roomId}", chatHandler.GetMessagesHandler).Methods("GET")

	// Private message routes
	protectedPMRoutes := router.PathPrefix("/api/private-messages").Subrouter()
	protectedPMRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedPMRoutes.HandleFunc("/send", privateMessageHandler.SendHandler).Methods("POST")
	protectedPMRoutes.HandleFunc("", privateMessageHandler.GetAllHandler).Methods("GET")
	protectedPMRoutes.HandleFunc("/conversation", privateMessageHandler.GetConversationHandler).Methods("GET")
	protectedPMRoutes.HandleFunc("/read/{id}", privateMessageHandler.MarkReadHandler).Methods("PUT")

	// Admin routes
	adminRoutes := router.PathPrefix("/api/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/users/{id}/ban", userHandler.AdminSetBannedHandler).Methods("PUT")
	adminRoutes.HandleFunc("/default-room", roomHandler.AdminSetDefaultRoomHandler).Methods("PUT")

	// WebSocket endpoint authenticates via its token query parameter
	router.HandleFunc("/ws", socketHandler.ServeWS)

	// Uploaded chat images
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background cleanup jobs
	cronjobs.StartMaintenanceCronJobs(otpService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
