package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/lifequest/lifequest-backend/internal/config"
	"github.com/lifequest/lifequest-backend/internal/database"
	"github.com/lifequest/lifequest-backend/internal/handlers"
	"github.com/lifequest/lifequest-backend/internal/jobs"
	"github.com/lifequest/lifequest-backend/internal/repository"
	cronjobs "github.com/lifequest/lifequest-backend/internal/scheduler"
	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
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
	store := storage.NewMongoStore(db)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(store)
	questRepo := repository.NewQuestRepository(store)
	recoveryRepo := repository.NewRecoveryRepository(store)
	feedRepo := repository.NewFeedRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo)
	questService := services.NewQuestService(questRepo, userService, notificationService)
	recoveryService := services.NewRecoveryService(recoveryRepo)
	feedService := services.NewFeedService(feedRepo, userRepo)

	if err := feedService.SeedFeed(context.Background()); err != nil {
		logger.Log.WithError(err).Warn("Failed to seed stand-in feed")
	}

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	questHandler := handlers.NewQuestHandler(questService)
	friendHandler := handlers.NewFriendHandler(userService)
	recoveryHandler := handlers.NewRecoveryHandler(recoveryService)
	feedHandler := handlers.NewFeedHandler(feedService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me/onboarding", userHandler.CompleteOnboardingHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Quest routes
	questRoutes := router.PathPrefix("/quests").Subrouter()
	questRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	questRoutes.HandleFunc("", questHandler.GetQuestsHandler).Methods("GET")
	questRoutes.HandleFunc("", questHandler.ActivateQuestHandler).Methods("POST")
	questRoutes.HandleFunc("/daily", questHandler.GetDailyBoardHandler).Methods("GET")
	questRoutes.HandleFunc("/catalog", questHandler.GetCatalogHandler).Methods("GET")
	questRoutes.HandleFunc("/custom", questHandler.CreateCustomQuestHandler).Methods("POST")
	questRoutes.HandleFunc("/proposals", questHandler.ProposeQuestHandler).Methods("POST")
	questRoutes.HandleFunc("/{id}/complete", questHandler.CompleteQuestHandler).Methods("POST")
	questRoutes.HandleFunc("/{id}/milestones/{milestoneId}/complete", questHandler.CompleteMilestoneHandler).Methods("POST")
	questRoutes.HandleFunc("/{id}", questHandler.CancelQuestHandler).Methods("DELETE")

	// Hobby routes
	hobbyRoutes := router.PathPrefix("/hobbies").Subrouter()
	hobbyRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	hobbyRoutes.HandleFunc("", questHandler.ListHobbiesHandler).Methods("GET")
	hobbyRoutes.HandleFunc("", questHandler.AddHobbyHandler).Methods("POST")
	hobbyRoutes.HandleFunc("/{id}", questHandler.RemoveHobbyHandler).Methods("DELETE")

	// Friend routes
	friendRoutes := router.PathPrefix("/friends").Subrouter()
	friendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	friendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	friendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	friendRoutes.HandleFunc("/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/{id}/respond", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	friendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Recovery routes
	recoveryRoutes := router.PathPrefix("/recovery").Subrouter()
	recoveryRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	recoveryRoutes.HandleFunc("", recoveryHandler.ListItemsHandler).Methods("GET")
	recoveryRoutes.HandleFunc("", recoveryHandler.CreateItemHandler).Methods("POST")
	recoveryRoutes.HandleFunc("/{id}/logs", recoveryHandler.LogEventHandler).Methods("POST")
	recoveryRoutes.HandleFunc("/{id}", recoveryHandler.DeleteItemHandler).Methods("DELETE")

	// Feed routes
	feedRoutes := router.PathPrefix("/feed").Subrouter()
	feedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	feedRoutes.HandleFunc("", feedHandler.GetFeedHandler).Methods("GET")
	feedRoutes.HandleFunc("", feedHandler.PostActivityHandler).Methods("POST")
	feedRoutes.HandleFunc("/stream", feedHandler.StreamHandler).Methods("GET")
	feedRoutes.HandleFunc("/{id}/like", feedHandler.ToggleLikeHandler).Methods("POST")
	feedRoutes.HandleFunc("/{id}/comments", feedHandler.AddCommentHandler).Methods("POST")
	feedRoutes.HandleFunc("/{id}/comments/{commentId}", feedHandler.DeleteCommentHandler).Methods("DELETE")

	// Notification routes
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	notificationRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background jobs: midnight rotation sweep, streak reminders
	sweep := jobs.NewDailySweep(questService, userService)
	cronjobs.StartCronJobs(sweep, notificationService)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
