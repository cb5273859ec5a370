package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BuildInfo is reported by the health and version endpoints
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RowCounter reports how many projects are loaded
type RowCounter interface {
	Len() int
}

// HealthHandler serves health, version and metrics endpoints
type HealthHandler struct {
	info     BuildInfo
	projects RowCounter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(info BuildInfo, projects RowCounter) *HealthHandler {
	return &HealthHandler{info: info, projects: projects}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "project-search",
		"projects":   h.projects.Len(),
		"version":    h.info.Version,
		"build_time": h.info.BuildTime,
		"git_commit": h.info.GitCommit,
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    h.info.Version,
		"build_time": h.info.BuildTime,
		"git_commit": h.info.GitCommit,
	})
}

// Metrics handles GET /metrics
func (h *HealthHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
