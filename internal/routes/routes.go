package routes

import (
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/handlers"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

const (
	forgotPasswordLimit  = 100
	forgotPasswordWindow = 15 * time.Minute
)

// SetupRoutes mounts the API. rdb backs the shared forgot-password limiter
// and may be nil, in which case that limiter is disabled.
func SetupRoutes(r chi.Router, rdb *redis.Client) {
	// Accounts
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)

	r.Route("/api/forgot-password", func(r chi.Router) {
		r.Use(middleware.RedisRateLimit(rdb, "forgot-password", forgotPasswordLimit, forgotPasswordWindow))
		r.Post("/request", handlers.RequestResetCode)
		r.Post("/verify", handlers.VerifyResetCode)
		r.Post("/reset", handlers.ResetPassword)
	})

	// Ingestion: anonymous callers are classified but not saved.
	r.With(middleware.OptionalAuth, middleware.CurhatRateLimit).Post("/api/curhat", handlers.Curhat)

	// Public catalogue and feedback board
	r.Get("/api/articles", handlers.GetArticles)
	r.Get("/api/feedback", handlers.GetFeedbacks)
	r.Post("/api/feedback", handlers.SubmitFeedback)
	r.Get("/api/feedback/{id}", handlers.GetFeedback)
	r.Delete("/api/feedback/{id}", handlers.DeleteFeedback)

	// Everything below needs a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/dashboard/summary", handlers.DashboardSummary)
		r.Get("/api/dashboard/weekly-stats", handlers.WeeklyStats)
		r.Get("/api/dashboard/recent", handlers.RecentHistory)

		r.Get("/api/history", handlers.GetHistory)
		r.Get("/api/history/{historyId}", handlers.GetHistoryItem)
		r.Get("/api/history/", handlers.GetHistoryItem)

		r.Get("/api/profile", handlers.GetProfile)
		r.Put("/api/profile", handlers.UpdateProfile)
		r.Delete("/api/profile", handlers.DeleteProfile)
	})
}
