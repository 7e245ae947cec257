package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/mealquest/backend/config"
	"github.com/pageza/mealquest/backend/internal/api"
	"github.com/pageza/mealquest/backend/internal/database"
	"github.com/pageza/mealquest/backend/internal/favorites"
	"github.com/pageza/mealquest/backend/internal/mealdb"
	"github.com/pageza/mealquest/backend/internal/metrics"
	"github.com/pageza/mealquest/backend/internal/middleware"
	"github.com/pageza/mealquest/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	log    logrus.FieldLogger
}

// New connects to storage, wires services and builds the router.
func New(cfg *config.Config, log logrus.FieldLogger) (*Server, error) {
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Server{cfg: cfg, db: db, log: log}

	if cfg.RedisEnabled() {
		s.redis, err = database.NewRedisClient(cfg, log)
		if err != nil {
			s.closeStorage()
			return nil, err
		}
	}

	store, err := s.favoritesStore()
	if err != nil {
		s.closeStorage()
		return nil, err
	}
	log.WithField("backend", cfg.FavoritesBackend).Info("favorites store ready")

	lookup := mealdb.NewClient(mealdb.Config{
		BaseURL:       cfg.MealDBBaseURL,
		Timeout:       cfg.MealDBTimeout,
		RatePerSecond: cfg.MealDBRatePerSecond,
		Burst:         cfg.MealDBBurst,
	}, log)

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, log)
	recipeService := service.NewRecipeService(lookup, favorites.NewReconciler(store, log), log)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigins))
	router.GET("/health", s.health)
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	var extra []gin.HandlerFunc
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(s.redis, middleware.RateLimitConfig{
			Window: cfg.RateLimitWindow,
			Limit:  cfg.RateLimit,
		}, log)
		extra = append(extra, limiter.Middleware())
	}
	api.SetupAPI(router, authService, recipeService, extra...)

	s.router = router
	s.http = &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) favoritesStore() (favorites.Store, error) {
	switch s.cfg.FavoritesBackend {
	case config.FavoritesMemory:
		return favorites.NewMemoryStore(s.log), nil
	case config.FavoritesRedis:
		return favorites.NewRedisStore(s.redis, s.log), nil
	case config.FavoritesSQL:
		return favorites.NewSQLStore(s.db, s.log), nil
	default:
		return nil, fmt.Errorf("unsupported favorites backend %q", s.cfg.FavoritesBackend)
	}
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok"}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.closeStorage()
	return err
}

func (s *Server) closeStorage() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close redis")
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close database")
		}
	}
}
