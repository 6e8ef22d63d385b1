package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prism-fanout/internal/analytics"
	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/internal/server/middleware"
	"github.com/nulzo/prism-fanout/internal/server/validator"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	service   gateway.Service
	analytics analytics.Service
	validator *validator.Validator
}

// New builds the HTTP server. stats may be nil when the run history store is
// disabled; the history endpoints are not mounted then.
func New(cfg *config.Config, logger *zap.Logger, service gateway.Service, stats analytics.Service) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger, "/health", "/api/health"))
	if cfg.Tracing.Enabled {
		engine.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}

	v := validator.New()
	v.InitBinding()

	s := &Server{
		router:    engine,
		service:   service,
		analytics: stats,
		logger:    logger,
		config:    cfg,
		validator: v,
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
