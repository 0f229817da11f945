// Package stepup implements the administrative password required before entering
// the admin dashboard, on top of the normal session.
package stepup

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pac-voluntarios/portal/internal/metrics"
	"github.com/pac-voluntarios/portal/internal/profile"
	log "github.com/sirupsen/logrus"
)

// MinPasswordLength is the shortest accepted administrative password.
const MinPasswordLength = 6

// saltBytes is the salt size before hex encoding (128 bits).
const saltBytes = 16

// User-facing messages. Precondition failures are specific; a wrong secret is reported
// with the generic MsgIncorrectPassword.
const (
	MsgMissingFields     = "All fields are required"
	MsgPasswordMismatch  = "Passwords don't match"
	MsgPasswordTooShort  = "Password must be at least 6 characters long (minimum length)"
	MsgAdminNotFound     = "No administrator profile found for this matricula"
	MsgAlreadyConfigured = "Administrative password is already configured; reset it first"
	MsgSetupFailed       = "Could not save the administrative password"
	MsgSetupSucceeded    = "Administrative password configured"

	MsgProfileNotFound   = "Profile not found"
	MsgNotAdmin          = "User is not an administrator"
	MsgInactiveAccount   = "Account is inactive"
	MsgNotConfigured     = "Administrative password is not configured"
	MsgIncorrectPassword = "Incorrect administrative password"
	MsgVerifyFailed      = "Could not verify the administrative password"
	MsgVerifySucceeded   = "Administrative access granted"

	MsgResetFailed    = "Could not reset the administrative password"
	MsgResetSucceeded = "Administrative password reset"
)

// Result is returned by every operation; operations never return errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ok(msg string) Result   { return Result{Success: true, Message: msg} }
func fail(msg string) Result { return Result{Success: false, Message: msg} }

// State is the step-up configuration state of an admin profile.
type State string

// Step-up states.
const (
	StateUnconfigured State = "unconfigured"
	StateConfigured   State = "configured"
)

// ProfileStore is the part of the profile store the authenticator needs.
type ProfileStore interface {
	GetAdminSecret(ctx context.Context, userID, email string) (profile.AdminSecret, error)
	FindAdminByMatricula(ctx context.Context, matricula string) (profile.AdminRef, error)
	Update(ctx context.Context, userID string, fields profile.Fields) error
}

// Authenticator runs setup, verify and reset against the profile store.
type Authenticator struct {
	store ProfileStore
	now   func() time.Time
	rand  io.Reader
}

// Option customizes an Authenticator.
type Option func(*Authenticator)

// WithClock overrides the time source used for admin_last_auth.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithRandom overrides the salt source.
func WithRandom(r io.Reader) Option {
	return func(a *Authenticator) { a.rand = r }
}

// New constructs an Authenticator.
func New(store ProfileStore, opts ...Option) *Authenticator {
	a := &Authenticator{store: store, now: time.Now, rand: rand.Reader}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HashSecret computes hex(SHA-256(password + salt)). The salt is used in its hex form,
// so stored credentials from the previous portal keep verifying.
func HashSecret(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func (a *Authenticator) newSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := io.ReadFull(a.rand, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Setup configures the administrative password for the admin registered under matricula.
func (a *Authenticator) Setup(ctx context.Context, matricula, password, confirmPassword string) Result {
	res := a.setup(ctx, matricula, password, confirmPassword)
	metrics.ObserveStepUp("setup", res.Success)
	return res
}

func (a *Authenticator) setup(ctx context.Context, matricula, password, confirmPassword string) Result {
	matricula = strings.TrimSpace(matricula)
	if matricula == "" || password == "" || confirmPassword == "" {
		return fail(MsgMissingFields)
	}
	if password != confirmPassword {
		return fail(MsgPasswordMismatch)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fail(MsgPasswordTooShort)
	}

	admin, errFind := a.store.FindAdminByMatricula(ctx, matricula)
	if errFind != nil {
		if errors.Is(errFind, profile.ErrNotFound) {
			return fail(MsgAdminNotFound)
		}
		log.WithError(errFind).Error("stepup setup: admin lookup failed")
		return fail(MsgSetupFailed)
	}
	if admin.Enabled {
		return fail(MsgAlreadyConfigured)
	}

	salt, errSalt := a.newSalt()
	if errSalt != nil {
		log.WithError(errSalt).Error("stepup setup: salt generation failed")
		return fail(MsgSetupFailed)
	}
	hash := HashSecret(password, salt)
	enabled := true
	if errUpdate := a.store.Update(ctx, admin.ID, profile.Fields{
		AdminSecretHash: &hash,
		AdminSecretSalt: &salt,
		Admin2FAEnabled: &enabled,
	}); errUpdate != nil {
		log.WithError(errUpdate).WithField("user_id", admin.ID).Error("stepup setup: persist failed")
		return fail(MsgSetupFailed)
	}

	log.WithField("user_id", admin.ID).Info("stepup: administrative password configured")
	return ok(MsgSetupSucceeded)
}

// Verify checks adminPassword for the profile matching both userID and userEmail.
func (a *Authenticator) Verify(ctx context.Context, adminPassword, userID, userEmail string) Result {
	res := a.verify(ctx, adminPassword, userID, userEmail)
	metrics.ObserveStepUp("verify", res.Success)
	return res
}

func (a *Authenticator) verify(ctx context.Context, adminPassword, userID, userEmail string) Result {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(userEmail) == "" {
		return fail(MsgProfileNotFound)
	}
	secret, errFind := a.store.GetAdminSecret(ctx, userID, userEmail)
	if errFind != nil {
		if errors.Is(errFind, profile.ErrNotFound) {
			return fail(MsgProfileNotFound)
		}
		log.WithError(errFind).WithField("user_id", userID).Error("stepup verify: profile lookup failed")
		return fail(MsgVerifyFailed)
	}
	if !secret.Role.IsAdmin() {
		return fail(MsgNotAdmin)
	}
	if !secret.Status.Active() {
		return fail(MsgInactiveAccount)
	}
	if !secret.Enabled || secret.Hash == "" || secret.Salt == "" {
		return fail(MsgNotConfigured)
	}

	computed := HashSecret(adminPassword, secret.Salt)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(secret.Hash)) != 1 {
		log.WithField("user_id", userID).Warn("stepup verify: incorrect administrative password")
		return fail(MsgIncorrectPassword)
	}

	now := a.now().UTC()
	if errUpdate := a.store.Update(ctx, userID, profile.Fields{AdminLastAuth: &now}); errUpdate != nil {
		log.WithError(errUpdate).WithField("user_id", userID).Error("stepup verify: last auth update failed")
		return fail(MsgVerifyFailed)
	}
	return ok(MsgVerifySucceeded)
}

// Reset clears the administrative password of userID, returning it to the unconfigured state.
// Callers are responsible for authorizing the reset.
func (a *Authenticator) Reset(ctx context.Context, userID string) Result {
	res := a.reset(ctx, userID)
	metrics.ObserveStepUp("reset", res.Success)
	return res
}

func (a *Authenticator) reset(ctx context.Context, userID string) Result {
	if strings.TrimSpace(userID) == "" {
		return fail(MsgProfileNotFound)
	}
	disabled := false
	errUpdate := a.store.Update(ctx, userID, profile.Fields{
		ClearAdminSecret: true,
		ClearLastAuth:    true,
		Admin2FAEnabled:  &disabled,
	})
	if errUpdate != nil {
		if errors.Is(errUpdate, profile.ErrNotFound) {
			return fail(MsgProfileNotFound)
		}
		log.WithError(errUpdate).WithField("user_id", userID).Error("stepup reset: persist failed")
		return fail(MsgResetFailed)
	}
	log.WithField("user_id", userID).Info("stepup: administrative password reset")
	return ok(MsgResetSucceeded)
}

// Status reports whether the caller's administrative password is configured.
func (a *Authenticator) Status(ctx context.Context, userID, userEmail string) (State, Result) {
	secret, errFind := a.store.GetAdminSecret(ctx, userID, userEmail)
	if errFind != nil {
		if errors.Is(errFind, profile.ErrNotFound) {
			return StateUnconfigured, fail(MsgProfileNotFound)
		}
		log.WithError(errFind).WithField("user_id", userID).Error("stepup status: profile lookup failed")
		return StateUnconfigured, fail(MsgVerifyFailed)
	}
	if !secret.Role.IsAdmin() {
		return StateUnconfigured, fail(MsgNotAdmin)
	}
	if secret.Enabled && secret.Hash != "" && secret.Salt != "" {
		return StateConfigured, ok(string(StateConfigured))
	}
	return StateUnconfigured, ok(string(StateUnconfigured))
}
