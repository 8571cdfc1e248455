package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/kartikbazzad/bunbase/bunquery/internal/config"
	"github.com/kartikbazzad/bunbase/bunquery/internal/middleware"
)

// NewRouter assembles the gin engine with recovery, CORS and rate limiting.
func NewRouter(cfg *config.Config, h *QueryHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigin))
	router.Use(middleware.RateLimit(cfg.Server.RequestsPerMinute, cfg.Server.Burst))

	router.GET("/health", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/collections/:collection/query", h.Query)
		v1.POST("/collections/:collection/documents", h.Insert)
		v1.GET("/collections/:collection/documents/:docID", h.Get)
	}

	return router
}
