package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/internal/application"
	handlers "github.com/oksasatya/go-contacts-api/internal/interface/http"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Resolver *application.IdentityResolver
	Limiter  Limiter
	Cfg      *config.Config
}

func NewAuthModule(h *handlers.AuthHandler, resolver *application.IdentityResolver, limiter Limiter, cfg *config.Config) *AuthModule {
	return &AuthModule{Handler: h, Resolver: resolver, Limiter: limiter, Cfg: cfg}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := m.Limiter.Route("auth.signup", m.Cfg.RateSignupMax, m.Cfg.RateSignupWindow, middleware.KeyByIP())
	loginLimiter := m.Limiter.Route("auth.login", m.Cfg.RateLoginMax, m.Cfg.RateLoginWindow, middleware.KeyByIP())
	requestLimiter := m.Limiter.Route("auth.request_email", m.Cfg.RateRequestMailMax, m.Cfg.RateRequestMailWin, middleware.KeyByIP())

	auth := rg.Group("/auth")
	auth.POST("/signup", signupLimiter, m.Handler.Signup)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.GET("/refresh_token", m.Handler.RefreshToken)
	auth.GET("/confirmed_email/:token", m.Handler.ConfirmedEmail)
	auth.POST("/request_email", requestLimiter, m.Handler.RequestEmail)
	auth.POST("/logout", middleware.RequireIdentity(m.Resolver), m.Handler.Logout)
}
