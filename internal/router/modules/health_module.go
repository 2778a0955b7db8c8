package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-contacts-api/internal/interface/http"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

type HealthModule struct {
	Handler *handlers.HealthHandler
	Limiter Limiter
}

func NewHealthModule(h *handlers.HealthHandler, limiter Limiter) *HealthModule {
	return &HealthModule{Handler: h, Limiter: limiter}
}

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	// public, rate-limited per IP
	rl := m.Limiter.Route("healthchecker", 120, time.Minute, middleware.KeyByIP())
	rg.GET("/healthchecker", rl, m.Handler.Health)
}
