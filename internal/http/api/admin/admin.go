package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/http/api/admin/handlers"
	"github.com/pac-voluntarios/portal/internal/profile"
	"github.com/pac-voluntarios/portal/internal/session"
	log "github.com/sirupsen/logrus"
)

// RoleStatusLookup reads the caller's role and status straight from the profile store.
type RoleStatusLookup interface {
	GetRoleStatus(ctx context.Context, userID string) (profile.RoleStatus, error)
}

// RegisterAdminRoutes registers the admin API. Routes under /api bypass the session gate,
// so every group here authenticates on its own.
func RegisterAdminRoutes(r *gin.Engine, profiles RoleStatusLookup, sessions session.Provider, auth handlers.StepUpAuthenticator, jwtCfg config.JWTConfig) {
	if r == nil || profiles == nil || sessions == nil || auth == nil {
		return
	}

	admin := r.Group("/api/admin")
	admin.Use(apiAuthMiddleware(profiles, sessions), adminOnlyMiddleware())

	stepUpHandler := handlers.NewStepUpHandler(auth, jwtCfg)
	admin.GET("/stepup/status", stepUpHandler.Status)
	admin.POST("/stepup/setup", stepUpHandler.Setup)
	admin.POST("/stepup/verify", stepUpHandler.Verify)
	admin.POST("/stepup/reset", stepUpHandler.Reset)
}

// apiAuthMiddleware requires a valid session for an active profile and loads it into context.
func apiAuthMiddleware(profiles RoleStatusLookup, sessions session.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, errSession := sessions.Resolve(c.Request)
		if errSession != nil {
			log.WithError(errSession).Error("admin api: resolve session failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			return
		}

		rs, errFind := profiles.GetRoleStatus(c.Request.Context(), id.UserID)
		if errFind != nil {
			if errors.Is(errFind, profile.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
				return
			}
			log.WithError(errFind).Error("admin api: profile lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authentication service error"})
			return
		}
		if !rs.Status.Active() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
			return
		}

		sessions.Refresh(c.Writer, c.Request, id)
		c.Set(handlers.ContextUserID, id.UserID)
		c.Set(handlers.ContextUserEmail, id.Email)
		c.Set(handlers.ContextUserRole, string(rs.Role))
		c.Next()
	}
}

// adminOnlyMiddleware rejects callers whose role is not admin.
func adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile.Role(c.GetString(handlers.ContextUserRole)) != profile.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}
