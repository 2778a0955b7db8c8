package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Check probes one backing service.
type Check func(ctx context.Context) error

type HealthHandler struct {
	Checks  map[string]Check
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewHealthHandler(checks map[string]Check, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second, Logger: logger}
}

// Health GET /api/healthchecker
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := h.Checks[name](ctx); err != nil {
			healthy = false
			status[name] = "down"
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("check", name).Error("health check failed")
			}
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		fail(c, http.StatusServiceUnavailable, "Service is not configured correctly", status)
		return
	}
	ok(c, http.StatusOK, status, "Welcome to the contacts API")
}
