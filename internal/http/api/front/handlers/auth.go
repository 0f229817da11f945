package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/models"
	"github.com/pac-voluntarios/portal/internal/profile"
	"github.com/pac-voluntarios/portal/internal/security"
	log "github.com/sirupsen/logrus"
)

// SessionIssuer writes and clears the session cookie.
type SessionIssuer interface {
	Issue(w http.ResponseWriter, userID, email string) error
	Clear(w http.ResponseWriter)
}

// ProfileFinder loads a profile by login e-mail.
type ProfileFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// AuthHandler handles portal login and logout.
type AuthHandler struct {
	profiles     ProfileFinder
	sessions     SessionIssuer
	stepUpCookie string
	secure       bool
}

// NewAuthHandler constructs an AuthHandler. stepUpCookie is cleared on logout.
func NewAuthHandler(profiles ProfileFinder, sessions SessionIssuer, stepUpCookie string, secure bool) *AuthHandler {
	return &AuthHandler{profiles: profiles, sessions: sessions, stepUpCookie: stepUpCookie, secure: secure}
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks e-mail and password and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	p, errFind := h.profiles.GetByEmail(c.Request.Context(), email)
	if errFind != nil {
		if !errors.Is(errFind, profile.ErrNotFound) {
			log.WithError(errFind).Error("login: profile lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !security.CheckPassword(p.PasswordHash, body.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !p.Status {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
		return
	}

	if errIssue := h.sessions.Issue(c.Writer, p.ID, p.Email); errIssue != nil {
		log.WithError(errIssue).Error("login: issue session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": p.ID,
		"email":   p.Email,
		"name":    p.Name,
		"role":    p.Role,
	})
}

// Logout clears the session and step-up cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	if h.stepUpCookie != "" {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     h.stepUpCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
