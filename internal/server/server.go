package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pantrysage/backend/config"
	"github.com/pantrysage/backend/internal/api"
	"github.com/pantrysage/backend/internal/middleware"
	"github.com/pantrysage/backend/internal/service"
)

// Server represents the HTTP server.
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger zerolog.Logger
}

// New creates a new server instance wired to the recommendation service.
func New(cfg *config.Config, recommender service.Recommender, logger zerolog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.NewRecommendHandler(recommender, logger).RegisterRoutes(v1)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
