package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// healthPingTimeout bounds the profile store ping.
const healthPingTimeout = 2 * time.Second

// HealthHandler reports whether the profile store is reachable.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

// Healthz pings the profile store and returns status.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		log.WithError(errPing).Warn("healthz: profile store ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": db.DialectName(h.db)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "database": db.DialectName(h.db)})
}
