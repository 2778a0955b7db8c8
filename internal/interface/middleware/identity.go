package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

// MsgUnauthorized is the single message for every identity failure.
const MsgUnauthorized = "Could not validate credentials"

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireIdentity resolves the bearer access token and stores the acting
// user in the context. Requests without a valid access token stop here.
func RequireIdentity(resolver *application.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := resolver.Resolve(c.Request.Context(), BearerToken(c))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, http.StatusUnauthorized, MsgUnauthorized, nil)
			return
		}
		c.Set(CtxIdentityKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// Identity returns the user stored by RequireIdentity, or nil.
func Identity(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}
