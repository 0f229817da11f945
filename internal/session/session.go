// Package session resolves the caller's identity from the portal session cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/security"
)

// Identity is the authenticated caller behind a request.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Provider resolves sessions and keeps the session cookie fresh.
type Provider interface {
	// Resolve returns the caller identity, or nil when the request carries no valid session.
	Resolve(r *http.Request) (*Identity, error)
	// Refresh re-issues the session cookie on the response when it is close to expiry.
	Refresh(w http.ResponseWriter, r *http.Request, id *Identity)
	// Clear expires the session cookie on the response.
	Clear(w http.ResponseWriter)
}

// JWTProvider keeps the session as an HS256 JWT in a cookie.
type JWTProvider struct {
	secret        string
	cookieName    string
	ttl           time.Duration
	refreshWindow time.Duration
	secure        bool
	now           func() time.Time
}

// NewJWTProvider builds a provider from the JWT config section.
func NewJWTProvider(cfg config.JWTConfig) *JWTProvider {
	return &JWTProvider{
		secret:        cfg.Secret,
		cookieName:    cfg.CookieName,
		ttl:           cfg.SessionTTL,
		refreshWindow: cfg.RefreshWindow,
		secure:        cfg.SecureCookie,
		now:           time.Now,
	}
}

var _ Provider = (*JWTProvider)(nil)

// Resolve reads the session cookie. Missing, expired or forged tokens mean no session.
func (p *JWTProvider) Resolve(r *http.Request) (*Identity, error) {
	cookie, errCookie := r.Cookie(p.cookieName)
	if errCookie != nil {
		if errors.Is(errCookie, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, errCookie
	}
	if cookie.Value == "" {
		return nil, nil
	}
	claims, errParse := security.ParseSessionToken(p.secret, cookie.Value)
	if errParse != nil {
		return nil, nil
	}
	id := &Identity{UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Refresh re-issues the cookie once less than the refresh window remains.
func (p *JWTProvider) Refresh(w http.ResponseWriter, _ *http.Request, id *Identity) {
	if id == nil || id.ExpiresAt.IsZero() {
		return
	}
	if id.ExpiresAt.Sub(p.now()) > p.refreshWindow {
		return
	}
	_ = p.Issue(w, id.UserID, id.Email)
}

// Issue signs a new session for the user and sets it on the response.
func (p *JWTProvider) Issue(w http.ResponseWriter, userID, email string) error {
	token, expiresAt, errSign := security.GenerateSessionToken(p.secret, userID, email, p.ttl)
	if errSign != nil {
		return errSign
	}
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(p.ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (p *JWTProvider) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
