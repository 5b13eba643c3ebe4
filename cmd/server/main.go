package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"moodring/internal/crypto"
	"moodring/internal/db"
	"moodring/internal/handlers"
	mw "moodring/internal/middleware"
	"moodring/internal/services"
	"moodring/internal/store"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func newLogger() *zap.Logger {
	if os.Getenv("APP_ENV") == "development" {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

func main() {
	_ = godotenv.Load()

	logger := newLogger()
	defer logger.Sync()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	encKey, err := crypto.KeyFromHex(os.Getenv("ENCRYPTION_KEY"))
	if err != nil {
		logger.Fatal("ENCRYPTION_KEY is invalid", zap.Error(err))
	}
	port := mustGetenv("PORT", "8080")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		logger.Fatal("failed to ping db", zap.Error(err))
	}
	if err := db.RunMigrations(dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	users := store.NewUserDB(dbConn)
	checkins := store.NewCheckInDB(dbConn)

	encSvc, err := services.NewEncryptionService(encKey)
	if err != nil {
		logger.Fatal("failed to build encryption service", zap.Error(err))
	}
	visibilitySvc := services.NewVisibilityService(users)
	feedSvc := services.NewFeedService(checkins, visibilitySvc, encSvc, logger)
	checkinSvc := services.NewCheckInService(checkins, encSvc, logger)
	analyticsSvc := services.NewAnalyticsService(checkins)
	streakSvc := services.NewStreakService(checkins)
	profileSvc := services.NewProfileService(users, checkins, analyticsSvc, streakSvc, logger)

	authHandler := handlers.NewAuthHandler(users, []byte(jwtSecret), logger)
	userHandler := handlers.NewUserHandler(users, logger)
	checkinHandler := handlers.NewCheckInHandler(checkinSvc, logger)
	feedHandler := handlers.NewFeedHandler(feedSvc, logger)
	profileHandler := handlers.NewProfileHandler(profileSvc, analyticsSvc, logger)
	adminHandler := handlers.NewAdminHandler(users, checkins, logger)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)

		// Detail falls back to a requestingUserId query param when no
		// token is presented.
		api.With(authMW.OptionalAuth).Get("/checkin/detail/{id}", feedHandler.GetDetail)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)

			pr.Get("/feed", feedHandler.GetFeed)

			pr.Post("/checkin", checkinHandler.Create)
			pr.Put("/checkin/{id}", checkinHandler.Update)
			pr.Delete("/checkin/{id}", checkinHandler.Delete)
			pr.Get("/checkin/{id}", checkinHandler.ListForUser)
			pr.Post("/checkin/{id}/like", feedHandler.Like)
			pr.Delete("/checkin/{id}/like", feedHandler.Unlike)

			pr.Get("/users/me", userHandler.GetMe)
			pr.Post("/users/block", userHandler.Block)

			pr.Get("/profile/summary", profileHandler.Summary)
			pr.Get("/profile/analytics", profileHandler.Analytics)

			pr.Get("/admin/overview", adminHandler.Overview)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("server stopped")
}
