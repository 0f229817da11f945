// Package profile adapts the portal profile table into the keyed lookups
// used by the session gate and the admin step-up flow.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/pac-voluntarios/portal/internal/models"
)

// ErrNotFound indicates no profile matched the lookup key.
var ErrNotFound = errors.New("profile not found")

// RoleStatus is the projection the session gate needs.
type RoleStatus struct {
	Role   Role
	Status AccountStatus
}

// AdminSecret is the projection used to verify the step-up password.
type AdminSecret struct {
	ID      string
	Email   string
	Role    Role
	Status  AccountStatus
	Hash    string
	Salt    string
	Enabled bool
}

// AdminRef identifies an admin profile found by matricula.
type AdminRef struct {
	ID      string
	Email   string
	Role    Role
	Enabled bool
}

// Fields is a partial update applied to a profile. Nil pointers are left unchanged;
// the Clear* flags null the column.
type Fields struct {
	AdminSecretHash  *string
	AdminSecretSalt  *string
	Admin2FAEnabled  *bool
	AdminLastAuth    *time.Time
	ClearAdminSecret bool
	ClearLastAuth    bool
}

// Store is the profile lookup/update service.
type Store interface {
	GetRoleStatus(ctx context.Context, userID string) (RoleStatus, error)
	GetAdminSecret(ctx context.Context, userID, email string) (AdminSecret, error)
	FindAdminByMatricula(ctx context.Context, matricula string) (AdminRef, error)
	Update(ctx context.Context, userID string, fields Fields) error
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
}
