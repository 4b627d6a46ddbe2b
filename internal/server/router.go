package server

import (
	"github.com/gin-gonic/gin"

	"github.com/abduss/photocat/internal/auth"
	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/config"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/logger"
	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/presigned"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config        config.Config
	ReadyChecks   []ReadyCheck
	AuthService   *auth.Service
	BucketService *bucket.Service
	FileService   *file.Service
	Presigned     *presigned.Service
	Catalog       *catalog.Coordinator
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil && deps.AuthService.Enabled() {
		api.Use(auth.AuthMiddleware(deps.AuthService))
		auth.RegisterRoutes(api, deps.AuthService)
	}

	if deps.BucketService != nil {
		bucket.RegisterRoutes(api, deps.BucketService)
	}
	if deps.FileService != nil {
		file.RegisterRoutes(api, deps.FileService)
	}
	if deps.Presigned != nil {
		presigned.NewHandler(deps.Presigned).RegisterRoutes(api)
	}
	if deps.Catalog != nil {
		registerCatalogRoutes(api, deps.Catalog)
	}

	return router
}
