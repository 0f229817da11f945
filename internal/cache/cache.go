// Package cache holds the role/status cache consulted by the session gate.
package cache

import (
	"context"
	"time"

	"github.com/pac-voluntarios/portal/internal/profile"
)

// Entry is a cached role/status pair with its expiry.
type Entry struct {
	Role      profile.Role          `json:"role"`
	Status    profile.AccountStatus `json:"status"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// Fresh reports whether the entry may still be served at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// RoleCache stores role/status entries keyed by user ID.
// Get returns entries regardless of expiry; callers check Fresh.
type RoleCache interface {
	Get(ctx context.Context, userID string) (Entry, bool)
	Set(ctx context.Context, userID string, entry Entry)
	Clear(ctx context.Context) error
}
