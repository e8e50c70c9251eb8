package monitoring

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// setupRouter configures the monitoring routes and middleware
func setupRouter(logger *slog.Logger, r *gin.Engine, statsHandler *StatsHandler, metrics http.Handler) {
	r.Use(Recovery(logger))
	r.Use(CorrelationID())
	r.Use(RequestLogger(logger, "/health", metricsPath))

	r.GET("/health", statsHandler.Health)

	if metrics != nil {
		r.GET(metricsPath, gin.WrapH(metrics))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/stats", statsHandler.Stats)
	}
}
