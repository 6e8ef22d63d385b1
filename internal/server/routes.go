package server

import (
	"github.com/nulzo/prism-fanout/internal/server/middleware"
	v1 "github.com/nulzo/prism-fanout/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorHandler(s.logger))

	healthHandler := v1.NewHealthHandler()
	generateHandler := v1.NewGenerateHandler(s.service, s.validator)

	// the browser client calls the /api prefixed paths
	for _, prefix := range []string{"", "/api"} {
		s.router.GET(prefix+"/health", healthHandler.Health)
		s.router.POST(prefix+"/generate", generateHandler.Generate)
	}

	api := s.router.Group("/v1")
	api.Use(middleware.Auth(s.config.Server.APIKeys))
	{
		providerHandler := v1.NewProviderHandler(s.service)
		api.GET("/providers", providerHandler.List)

		if s.analytics != nil {
			analyticsHandler := v1.NewAnalyticsHandler(s.analytics, s.validator)
			api.GET("/runs", analyticsHandler.ListRuns)
			api.GET("/runs/:id", analyticsHandler.GetRun)
			api.GET("/stats", analyticsHandler.GetStats)
		}
	}
}
