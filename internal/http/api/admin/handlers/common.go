package handlers

import "github.com/gin-gonic/gin"

// Context keys set by the admin API middleware.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
	ContextUserRole  = "userRole"
)

func getUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func getUserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}
