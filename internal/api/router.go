// Package api wires the HTTP surface: routing, middleware and handlers.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vyralflow/vyralflow/internal/api/handler"
	"github.com/vyralflow/vyralflow/internal/api/middleware"
	"github.com/vyralflow/vyralflow/internal/config"
	"github.com/vyralflow/vyralflow/internal/logger"
	"github.com/vyralflow/vyralflow/internal/orchestrator"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(orch *orchestrator.Orchestrator, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	campaignHandler := handler.NewCampaignHandler(orch)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/campaigns", campaignHandler.CreateCampaign)
		v1.GET("/campaigns", campaignHandler.ListCampaigns)
		v1.GET("/campaigns/:id/status", campaignHandler.GetStatus)
		v1.GET("/campaigns/:id/results", campaignHandler.GetResults)
		v1.POST("/campaigns/:id/force-complete", campaignHandler.ForceComplete)
	}

	return r
}
