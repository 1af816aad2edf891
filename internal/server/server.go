package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends are the stores a server runs against. DB and Redis are nil when
// the storage driver does not use them.
type Backends struct {
	Store         *store.Store
	BackupImports repository.BackupImportRepository
	DB            *sql.DB
	Redis         *redis.Client
}

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	backends Backends
}

func NewServer(cfg *config.Config, logger *zap.Logger, backends Backends) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	server := &Server{
		config:   cfg,
		logger:   logger,
		backends: backends,
	}
	router.Get("/health", server.health)

	st := backends.Store

	// Initialize services
	catalogService := service.NewCatalogService(st, cfg.Catalog.PageSize, cfg.Catalog.LowStockThreshold, logger)
	cartService := service.NewCartService(st, logger)
	wishlistService := service.NewWishlistService(st)
	orderService := service.NewOrderService(st, logger)
	userService := service.NewUserService(st, cfg.JWT.Secret, time.Duration(cfg.JWT.AccessExpiry)*time.Minute, logger)
	contentService := service.NewContentService(st)
	reviewService := service.NewReviewService(st, logger)
	backupService := service.NewBackupService(st, backends.BackupImports, logger)

	// Create middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	optionalAuth := custommiddleware.OptionalAuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	rateLimit := custommiddleware.NewRateLimiter(backends.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Register routes
	transport.NewCatalogHandler(catalogService, reviewService, contentService, logger).RegisterRoutes(router)
	transport.NewCartHandler(cartService, wishlistService, logger).RegisterRoutes(router, optionalAuth)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware, optionalAuth)
	transport.NewUserHandler(userService, cartService, logger).RegisterRoutes(router, authMiddleware, rateLimit)
	transport.NewAdminHandler(catalogService, orderService, contentService, reviewService, backupService, logger).
		RegisterRoutes(router, authMiddleware, requireAdmin)

	feed := transport.NewOrderFeed(orderService, cfg.CORS.AllowedOrigins, logger)
	st.Subscribe(feed.Listener())
	feed.RegisterRoutes(router)

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"storage": s.config.Storage.Driver,
	}
	status := http.StatusOK

	if s.backends.DB != nil {
		db := database.Health(r.Context(), s.backends.DB)
		body["database"] = db
		if db["status"] != "up" {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	if s.backends.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.backends.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = map[string]string{"status": "down", "error": err.Error()}
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			body["redis"] = map[string]string{"status": "up"}
		}
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.backends.DB != nil {
		if err := s.backends.DB.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.backends.Redis != nil {
		if err := s.backends.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
