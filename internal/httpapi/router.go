package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tourmap/pkg/logger"
	"tourmap/pkg/metrics"
)

// NewRouter wires middleware, health, metrics and the API routes. gatherer
// may be nil to leave /metrics unregistered.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, m *metrics.Metrics, log *zap.Logger) *gin.Engine {
	log = logger.OrNop(log)

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(Logging(log))
	engine.Use(Metrics(m))
	engine.Use(Recovery(log))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	h.RegisterRoutes(engine.Group("/api"))
	return engine
}
