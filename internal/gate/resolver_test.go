package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pac-voluntarios/portal/internal/cache"
	"github.com/pac-voluntarios/portal/internal/profile"
)

func TestResolverCachesForTTL(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]profile.RoleStatus{
		"u1": {Role: profile.RoleAdmin, Status: profile.StatusActive},
	}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewResolver(lookup, cache.NewMemoryCache(8), 5*time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, errResolve := r.Resolve(ctx, "u1"); errResolve != nil {
		t.Fatalf("first resolve: %v", errResolve)
	}
	now = now.Add(4*time.Minute + 59*time.Second)
	rs, errResolve := r.Resolve(ctx, "u1")
	if errResolve != nil {
		t.Fatalf("second resolve: %v", errResolve)
	}
	if !rs.Role.IsAdmin() || !rs.Status.Active() {
		t.Fatalf("unexpected cached value %+v", rs)
	}
	if lookup.calls != 1 {
		t.Fatalf("expected 1 profile lookup within TTL, got %d", lookup.calls)
	}

	now = now.Add(time.Second)
	if _, errResolve := r.Resolve(ctx, "u1"); errResolve != nil {
		t.Fatalf("third resolve: %v", errResolve)
	}
	if lookup.calls != 2 {
		t.Fatalf("expected a fresh lookup after TTL, got %d calls", lookup.calls)
	}
}

func TestResolverServesRefreshedRole(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]profile.RoleStatus{
		"u1": {Role: profile.RoleAdmin, Status: profile.StatusActive},
	}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewResolver(lookup, cache.NewMemoryCache(8), time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, errResolve := r.Resolve(ctx, "u1"); errResolve != nil {
		t.Fatalf("resolve: %v", errResolve)
	}
	lookup.profiles["u1"] = profile.RoleStatus{Role: profile.RoleAgent, Status: profile.StatusInactive}

	rs, _ := r.Resolve(ctx, "u1")
	if !rs.Role.IsAdmin() {
		t.Fatalf("expected stale admin role within TTL, got %s", rs.Role)
	}

	now = now.Add(2 * time.Minute)
	rs, _ = r.Resolve(ctx, "u1")
	if rs.Role.IsAdmin() || rs.Status.Active() {
		t.Fatalf("expected refreshed inactive agent, got %+v", rs)
	}
}

func TestResolverMissingProfileIsError(t *testing.T) {
	lookup := &fakeLookup{profiles: map[string]profile.RoleStatus{}}
	c := cache.NewMemoryCache(8)
	r := NewResolver(lookup, c, time.Minute)

	_, errResolve := r.Resolve(context.Background(), "nobody")
	if !errors.Is(errResolve, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errResolve)
	}
	if c.Len() != 0 {
		t.Fatalf("failed lookups must not be cached")
	}
}

func TestResolverDefaultsTTL(t *testing.T) {
	r := NewResolver(&fakeLookup{}, cache.NewMemoryCache(1), 0)
	if r.ttl != 5*time.Minute {
		t.Fatalf("expected default ttl 5m, got %s", r.ttl)
	}
}
