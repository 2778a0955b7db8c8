package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/pkg/ratelimit"
	"github.com/oksasatya/go-contacts-api/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// KeyFunc builds the caller part of a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits by resolved user, falling back to IP for anonymous calls.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "user:anon:ip:" + ipFromCtx(c)
		}
		return "user:" + uid
	}
}

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit admits requests through gate under route's limit with:
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass; OPTIONS is never counted
// - fail-open when redis errors
func RateLimit(gate *ratelimit.Gate, route string, limit ratelimit.Limit, keyFn KeyFunc, allow AllowFunc, logger *logrus.Logger) gin.HandlerFunc {
	if gate == nil || !limit.Enabled() || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		caller := keyFn(c)
		d, err := gate.Admit(c.Request.Context(), caller, route, limit)

		var limited *ratelimit.LimitError
		if err != nil && !errors.As(err, &limited) {
			if logger != nil {
				logger.WithError(err).WithField("route", route).Warn("rate limiter unavailable, allowing request")
			}
			c.Next()
			return
		}

		resetSec := int(math.Ceil(d.ResetIn.Seconds()))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if limited != nil {
			retry := int(math.Ceil(limited.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			if logger != nil {
				logger.WithFields(logrus.Fields{"route": route, "caller": caller, "count": d.Count}).Warn("rate limit exceeded")
			}
			response.Abort(c, http.StatusTooManyRequests, "Too many requests", gin.H{"retry_after": retry})
			return
		}
		c.Next()
	}
}
