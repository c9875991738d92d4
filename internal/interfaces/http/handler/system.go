package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/commerce/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck probes one backing service
type HealthCheck func(ctx context.Context) error

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    map[string]HealthCheck
}

// NewSystemHandler creates a new SystemHandler. Checks are named backing
// services probed by the readiness endpoint.
func NewSystemHandler(checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports process liveness
// GET /healthz
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Ready reports whether backing services are reachable
// GET /readyz
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[name] = "ok"
		}
	}

	if status == http.StatusOK {
		c.JSON(status, dto.NewSuccessResponse(results))
		return
	}
	c.JSON(status, dto.Response{Success: false, Data: results})
}
