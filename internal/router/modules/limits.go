package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
	"github.com/oksasatya/go-contacts-api/pkg/ratelimit"
)

// Limiter builds per-route admission middleware on one shared gate.
// A nil Gate turns every limiter into a pass-through.
type Limiter struct {
	Gate   *ratelimit.Gate
	Allow  middleware.AllowFunc
	Logger *logrus.Logger
}

func (l Limiter) Route(route string, n int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(l.Gate, route, ratelimit.Limit{Max: n, Window: window}, key, l.Allow, l.Logger)
}
