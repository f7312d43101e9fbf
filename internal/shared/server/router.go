package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docstore-backend/internal/docs"
	"docstore-backend/internal/ingestion"
	"docstore-backend/internal/services/health"
	"docstore-backend/internal/shared/config"
	"docstore-backend/internal/shared/metrics"
	"docstore-backend/internal/shared/server/middleware"
	"docstore-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config    config.Config
	Docs      *docs.Handler
	Ingestion *ingestion.Handler
	Health    *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		payload, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	deps.Docs.RegisterRoutes(api)
	deps.Ingestion.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
