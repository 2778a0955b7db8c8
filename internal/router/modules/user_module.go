package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-contacts-api/internal/application"
	handlers "github.com/oksasatya/go-contacts-api/internal/interface/http"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

// UserModule wires profile routes.
// Protected: GET /api/users/me, PATCH /api/users/avatar
type UserModule struct {
	Handler  *handlers.UserHandler
	Resolver *application.IdentityResolver
}

func NewUserModule(h *handlers.UserHandler, resolver *application.IdentityResolver) *UserModule {
	return &UserModule{Handler: h, Resolver: resolver}
}

func (m *UserModule) Name() string { return "users" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.RequireIdentity(m.Resolver))
	{
		users.GET("/me", m.Handler.Me)
		users.PATCH("/avatar", m.Handler.UpdateAvatar)
	}
}
