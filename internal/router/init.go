package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-contacts-api/config"
	"github.com/oksasatya/go-contacts-api/internal/application"
	"github.com/oksasatya/go-contacts-api/internal/container"
	handlers "github.com/oksasatya/go-contacts-api/internal/interface/http"
	"github.com/oksasatya/go-contacts-api/internal/interface/middleware"
	"github.com/oksasatya/go-contacts-api/internal/router/modules"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
	"github.com/oksasatya/go-contacts-api/pkg/validation"
)

type AuthModuleDeps struct {
	Sessions      *application.SessionService
	Confirmations *application.ConfirmationService
	Accounts      *application.Service
	Resolver      *application.IdentityResolver
}

func buildAuthDeps(cfg *config.Config) AuthModuleDeps {
	users := container.GetUserRepo()
	jwt := container.GetJWT()
	logger := container.GetLogger()

	confirmations := application.NewConfirmationService(users, jwt, container.GetMailer(), logger, cfg.EmailTokenTTL)
	return AuthModuleDeps{
		Sessions: application.NewSessionService(users, jwt, logger, application.SessionConfig{
			AccessTTL:     cfg.AccessTTL,
			RefreshTTL:    cfg.RefreshTTL,
			RevokeOnReuse: cfg.RefreshReuseRevokes,
		}),
		Confirmations: confirmations,
		Accounts:      application.NewService(users, confirmations, container.GetAvatarStorage(), logger),
		Resolver:      application.NewIdentityResolver(users, jwt),
	}
}

func healthChecks() map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["database"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if es := container.GetES(); es != nil {
		checks["search"] = func(ctx context.Context) error { return helpers.PingES(ctx, es) }
	}
	return checks
}

// InitModules builds every feature module from the container singletons
// and registers them with the router registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	limiter := modules.Limiter{Gate: container.GetRateGate(), Logger: logger}
	if cfg.RateBypassPrivate {
		limiter.Allow = middleware.AllowPrivateIP()
	}

	auth := buildAuthDeps(cfg)
	contacts := application.NewContactService(container.GetContactStore(), container.GetContactIndex(), logger)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(healthChecks(), logger), limiter))
	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(auth.Accounts, auth.Sessions, auth.Confirmations, logger),
		auth.Resolver, limiter, cfg,
	))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(auth.Accounts, logger), auth.Resolver))
	r.Add(modules.NewContactModule(handlers.NewContactHandler(contacts, logger), auth.Resolver, limiter, cfg))
}

// NewEngine returns a gin engine with the global middleware and every
// module mounted under /api.
func NewEngine(cfg *config.Config) *gin.Engine {
	validation.Init()

	r := gin.New()
	if !cfg.TrustProxyHeaders {
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	r.Use(middleware.ProcessTime())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowAllOrigins:  len(cfg.CORSOrigins()) == 0,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.HeaderProcessTime, middleware.HeaderRequestID},
		AllowCredentials: len(cfg.CORSOrigins()) > 0,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r, container.GetLogger())
	InitModules(reg)
	reg.RegisterAll()
	return r
}
