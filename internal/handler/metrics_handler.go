package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/service"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type metricsSource interface {
	Handler() http.Handler
	Snapshot() models.SystemMetrics
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics metricsSource
	ready   ReadinessCheck
}

// NewMetricsHandler constructs a metrics handler. ready may be nil.
func NewMetricsHandler(metrics *service.MetricsService, ready ReadinessCheck) *MetricsHandler {
	h := &MetricsHandler{ready: ready}
	if metrics != nil {
		h.metrics = metrics
	}
	return h
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until the database answers.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// System godoc
// @Summary In-process metrics snapshot
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *MetricsHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, "metrics are disabled"))
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
