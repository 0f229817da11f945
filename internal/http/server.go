// Package http assembles the portal's gin engine: middleware, API routes and the
// pass-through to the page rendering service.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/gate"
	"github.com/pac-voluntarios/portal/internal/http/api/admin"
	adminhandlers "github.com/pac-voluntarios/portal/internal/http/api/admin/handlers"
	"github.com/pac-voluntarios/portal/internal/http/api/front"
	"github.com/pac-voluntarios/portal/internal/metrics"
	"github.com/pac-voluntarios/portal/internal/profile"
	"github.com/pac-voluntarios/portal/internal/session"
	"gorm.io/gorm"
)

// EngineDeps are the collaborators wired into the engine.
type EngineDeps struct {
	Config   config.Config
	DB       *gorm.DB
	Profiles profile.Store
	Sessions *session.JWTProvider
	Gate     *gate.Gate
	StepUp   adminhandlers.StepUpAuthenticator
}

// NewEngine builds the gin engine. Every request passes the session gate before routing.
func NewEngine(deps EngineDeps) (*gin.Engine, error) {
	upstream, errUpstream := UpstreamHandler(deps.Config.Server.UpstreamURL)
	if errUpstream != nil {
		return nil, errUpstream
	}

	r := gin.New()
	r.Use(RecoveryMiddleware(), RequestLogMiddleware())
	if deps.Gate != nil {
		r.Use(deps.Gate.Middleware())
	}

	healthHandler := adminhandlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", metrics.Handler())

	front.RegisterFrontRoutes(r, deps.Profiles, deps.Sessions, deps.Config.JWT)
	admin.RegisterAdminRoutes(r, deps.Profiles, deps.Sessions, deps.StepUp, deps.Config.JWT)

	r.NoRoute(upstream)
	return r, nil
}
