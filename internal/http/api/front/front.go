package front

import (
	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/http/api/front/handlers"
)

// RegisterFrontRoutes registers the public session endpoints.
func RegisterFrontRoutes(r *gin.Engine, profiles handlers.ProfileFinder, sessions handlers.SessionIssuer, jwtCfg config.JWTConfig) {
	if r == nil || profiles == nil || sessions == nil {
		return
	}

	auth := r.Group("/api/auth")

	authHandler := handlers.NewAuthHandler(profiles, sessions, jwtCfg.StepUpCookie, jwtCfg.SecureCookie)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
}
