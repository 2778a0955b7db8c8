package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/internal/application"
	handlers "github.com/oksasatya/go-contacts-api/internal/interface/http"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

// ContactModule serves the owner-scoped address book. Every route requires
// an access token; the owner always comes from that token.
type ContactModule struct {
	Handler  *handlers.ContactHandler
	Resolver *application.IdentityResolver
	Limiter  Limiter
	Cfg      *config.Config
}

func NewContactModule(h *handlers.ContactHandler, resolver *application.IdentityResolver, limiter Limiter, cfg *config.Config) *ContactModule {
	return &ContactModule{Handler: h, Resolver: resolver, Limiter: limiter, Cfg: cfg}
}

func (m *ContactModule) Name() string { return "contacts" }

func (m *ContactModule) Register(rg *gin.RouterGroup) {
	listLimiter := m.Limiter.Route("contacts.list", m.Cfg.RateContactsMax, m.Cfg.RateContactsWindow, middleware.KeyByUserID())

	contacts := rg.Group("/contacts")
	contacts.Use(middleware.RequireIdentity(m.Resolver))
	{
		contacts.GET("", listLimiter, m.Handler.List)
		contacts.POST("", m.Handler.Create)
		contacts.GET("/search", m.Handler.Search)
		contacts.GET("/birthdays", m.Handler.Birthdays)
		contacts.GET("/fulltext", m.Handler.FullText)
		contacts.GET("/:id", m.Handler.Get)
		contacts.PUT("/:id", m.Handler.Update)
		contacts.DELETE("/:id", m.Handler.Delete)
	}
}
