package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/util"
	log "github.com/sirupsen/logrus"
)

// RequestLogMiddleware logs one line per request with the query string masked.
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := util.MaskSensitiveQuery(c.Request.URL.RawQuery); raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		msg := fmt.Sprintf("%s %s", c.Request.Method, path)
		switch {
		case status >= 500:
			entry.Error(msg)
		case status >= 400:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}

// RecoveryMiddleware turns handler panics into a logged 500 response.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		log.WithField("path", c.Request.URL.Path).Errorf("panic recovered: %v", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
