package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/hiddenmood-backend/internal/config"
	"github.com/AnshRaj112/hiddenmood-backend/internal/database"
	"github.com/AnshRaj112/hiddenmood-backend/internal/handlers"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/internal/routes"
	"github.com/AnshRaj112/hiddenmood-backend/internal/services"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/clientip"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: cfg.LogOutput}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	if envErr != nil {
		logger.Info("No .env file found")
	}

	loc, err := cfg.LoadLocation()
	if err != nil {
		logger.Warn("⚠️  Unknown TIMEZONE, dashboard days will use UTC", "timezone", cfg.Timezone, "error", err)
	}

	middleware.InitAuth(cfg.JWTSecret)
	clientip.SetTrustProxy(cfg.TrustProxy)
	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		logger.Warn("⚠️  WARNING: JWT_SECRET is the development default")
	}

	logger.Info("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	defer database.DisconnectPostgres()

	logger.Info("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer database.DisconnectRedis()

	logger.Info("Connecting to MongoDB...", "uri", maskURI(cfg.MongoURI))
	if err := database.Connect(cfg.MongoURI); err != nil {
		logger.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer database.Disconnect()

	var images services.ImageStore
	if cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret); err != nil {
		logger.Warn("Cloudinary unavailable, profile image uploads are disabled", "error", err)
	} else {
		images = cld
		logger.Info("✅ Cloudinary service initialized")
	}

	if cfg.SMTPEmail == "" || cfg.SMTPPassword == "" {
		logger.Warn("⚠️  SMTP_EMAIL/SMTP_PASSWORD not set, password reset emails will fail")
	}

	handlers.Init(handlers.Dependencies{
		History:    services.NewPostgresHistoryStore(database.PostgresDB),
		Users:      services.NewPostgresUserStore(database.PostgresDB),
		Classifier: services.NewMLClassifier(cfg.MLAPIURL, cfg.MLAPITimeout),
		Articles: services.NewCachedArticleStore(
			services.NewMongoArticleStore(database.DB),
			services.NewCacheService(database.RedisClient, services.DefaultCacheTTL),
		),
		ResetCodes: services.NewRedisResetCodeStore(database.RedisClient),
		Mailer:     services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword),
		Images:     images,
		Location:   loc,
		Now:        time.Now,
	})

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		logger.Info("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	}

	r.Get("/health", health)

	routes.SetupRoutes(r, database.RedisClient)

	logger.Info("📋 Registered routes:")
	chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logger.Infof("  %-6s %s", method, route)
		return nil
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Leave room for the classifier call on /api/curhat.
		WriteTimeout: cfg.MLAPITimeout + 15*time.Second,
	}

	go func() {
		logger.Infof("🚀 HiddenMood backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// health reports 200 when every store answers a ping and 503 otherwise.
func health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	stores, err := database.Health(ctx)
	status, code := "ok", http.StatusOK
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": status, "stores": stores})
}

// maskURI hides the password of a user:password@host connection string.
func maskURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	scheme := strings.Index(uri, "://")
	if at == -1 || scheme == -1 {
		return uri
	}
	creds := uri[scheme+3 : at]
	if i := strings.Index(creds, ":"); i != -1 {
		return uri[:scheme+3] + creds[:i] + ":***" + uri[at:]
	}
	return uri
}
