package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"entityblock/database"
	"entityblock/internal/config"
	"entityblock/server/handlers"
	"entityblock/server/middleware"
)

// Server HTTP API блокинга
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	db         *database.ResultsDB
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer создает сервер; db может быть nil, тогда сохранение прогонов недоступно
func NewServer(cfg *config.Config, db *database.ResultsDB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // большие наборы записей считаются долго
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим Gin можно переопределить через GIN_MODE
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinRecoveryMiddleware(s.logger))
	router.Use(middleware.GinLoggerMiddleware(s.logger))
	router.Use(middleware.GinGzipMiddleware())

	settings := s.config.Settings()

	var store handlers.RunStore
	var health func() error
	if s.db != nil {
		store = s.db
		health = func() error { return s.db.GetConnection().Ping() }
	}

	limiter := middleware.NewRateLimiter(s.config.RateLimitPerSecond, s.config.RateLimitBurst)

	handlers.Routes{
		Blocking:   handlers.NewBlockingHandler(store, settings, s.config.MaxRequestRecords, s.logger),
		Similarity: handlers.NewSimilarityHandler(settings, s.logger),
		RunLimiter: limiter.Middleware(),
		Health:     health,
	}.Register(router)

	return router
}

// ServeHTTP реализует http.Handler для тестов
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"shingle_length", s.config.ShingleLength,
		"block_field", s.config.BlockField,
		"score_field", s.config.ScoreField,
		"persistence", s.db != nil,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Initiating graceful shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	s.logger.Info("Graceful shutdown completed")
	return nil
}
