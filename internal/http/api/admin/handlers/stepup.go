package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/security"
	"github.com/pac-voluntarios/portal/internal/stepup"
	log "github.com/sirupsen/logrus"
)

// StepUpAuthenticator is the admin step-up service used by the handlers.
type StepUpAuthenticator interface {
	Setup(ctx context.Context, matricula, password, confirmPassword string) stepup.Result
	Verify(ctx context.Context, adminPassword, userID, userEmail string) stepup.Result
	Reset(ctx context.Context, userID string) stepup.Result
	Status(ctx context.Context, userID, userEmail string) (stepup.State, stepup.Result)
}

// StepUpHandler serves the administrative password endpoints.
type StepUpHandler struct {
	auth   StepUpAuthenticator
	jwtCfg config.JWTConfig
}

// NewStepUpHandler constructs a StepUpHandler.
func NewStepUpHandler(auth StepUpAuthenticator, jwtCfg config.JWTConfig) *StepUpHandler {
	return &StepUpHandler{auth: auth, jwtCfg: jwtCfg}
}

// setupRequest defines the request body for configuring the administrative password.
type setupRequest struct {
	Matricula       string `json:"matricula"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// verifyRequest defines the request body for step-up verification.
type verifyRequest struct {
	Password string `json:"password"`
}

// resetRequest defines the request body for reset; an empty user id resets the caller.
type resetRequest struct {
	UserID string `json:"user_id"`
}

// Setup configures the administrative password for an admin matricula.
func (h *StepUpHandler) Setup(c *gin.Context) {
	var body setupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, stepup.Result{Message: "invalid json"})
		return
	}
	res := h.auth.Setup(c.Request.Context(), body.Matricula, body.Password, body.ConfirmPassword)
	c.JSON(statusForResult(res), res)
}

// Verify checks the caller's administrative password and grants a step-up cookie.
func (h *StepUpHandler) Verify(c *gin.Context) {
	var body verifyRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, stepup.Result{Message: "invalid json"})
		return
	}
	userID := getUserID(c)
	res := h.auth.Verify(c.Request.Context(), body.Password, userID, getUserEmail(c))
	if !res.Success {
		c.JSON(statusForResult(res), res)
		return
	}

	token, expiresAt, errSign := security.GenerateStepUpToken(h.jwtCfg.Secret, userID, h.jwtCfg.StepUpTTL)
	if errSign != nil {
		log.WithError(errSign).Error("stepup verify: sign step-up token failed")
		c.JSON(http.StatusInternalServerError, stepup.Result{Message: stepup.MsgVerifyFailed})
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.jwtCfg.StepUpCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(h.jwtCfg.StepUpTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.jwtCfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	c.JSON(http.StatusOK, res)
}

// Reset clears an administrative password. Every reset, the caller's own included, requires a
// verified step-up; a forgotten secret is cleared with the stepup reset command instead.
func (h *StepUpHandler) Reset(c *gin.Context) {
	var body resetRequest
	if c.Request.ContentLength != 0 {
		if errBind := c.ShouldBindJSON(&body); errBind != nil {
			c.JSON(http.StatusBadRequest, stepup.Result{Message: "invalid json"})
			return
		}
	}
	callerID := getUserID(c)
	target := strings.TrimSpace(body.UserID)
	if target == "" {
		target = callerID
	}
	if !h.StepUpVerified(c) {
		c.JSON(http.StatusForbidden, stepup.Result{Message: "administrative step-up required"})
		return
	}

	res := h.auth.Reset(c.Request.Context(), target)
	if res.Success {
		log.WithFields(log.Fields{"caller": callerID, "target": target}).Info("administrative password reset via api")
		if target == callerID {
			h.clearStepUpCookie(c)
		}
	}
	c.JSON(statusForResult(res), res)
}

// Status reports whether the caller's administrative password is configured and verified.
func (h *StepUpHandler) Status(c *gin.Context) {
	state, res := h.auth.Status(c.Request.Context(), getUserID(c), getUserEmail(c))
	if !res.Success {
		c.JSON(statusForResult(res), res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  res.Message,
		"state":    state,
		"verified": state == stepup.StateConfigured && h.StepUpVerified(c),
	})
}

// StepUpVerified reports whether the request carries a valid step-up cookie for the caller.
func (h *StepUpHandler) StepUpVerified(c *gin.Context) bool {
	cookie, errCookie := c.Request.Cookie(h.jwtCfg.StepUpCookie)
	if errCookie != nil || cookie.Value == "" {
		return false
	}
	claims, errParse := security.ParseStepUpToken(h.jwtCfg.Secret, cookie.Value)
	if errParse != nil {
		return false
	}
	return claims.UserID != "" && claims.UserID == getUserID(c)
}

func (h *StepUpHandler) clearStepUpCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.jwtCfg.StepUpCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.jwtCfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// statusForResult maps a step-up result to an HTTP status.
func statusForResult(res stepup.Result) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Message {
	case stepup.MsgMissingFields, stepup.MsgPasswordMismatch, stepup.MsgPasswordTooShort:
		return http.StatusBadRequest
	case stepup.MsgIncorrectPassword:
		return http.StatusUnauthorized
	case stepup.MsgNotAdmin, stepup.MsgInactiveAccount:
		return http.StatusForbidden
	case stepup.MsgAdminNotFound, stepup.MsgProfileNotFound:
		return http.StatusNotFound
	case stepup.MsgNotConfigured, stepup.MsgAlreadyConfigured:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
