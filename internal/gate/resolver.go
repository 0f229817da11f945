package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/pac-voluntarios/portal/internal/cache"
	"github.com/pac-voluntarios/portal/internal/metrics"
	"github.com/pac-voluntarios/portal/internal/profile"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/pac-voluntarios/portal/internal/gate"

// RoleStatusLookup is the profile store query behind the role cache.
type RoleStatusLookup interface {
	GetRoleStatus(ctx context.Context, userID string) (profile.RoleStatus, error)
}

// Resolver answers role/status queries from the cache, falling back to the profile store.
type Resolver struct {
	lookup RoleStatusLookup
	cache  cache.RoleCache
	ttl    time.Duration
	now    func() time.Time
	tracer trace.Tracer
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithClock overrides the time source used for cache expiry.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver constructs a Resolver. A non-positive ttl uses the five minute default.
func NewResolver(lookup RoleStatusLookup, c cache.RoleCache, ttl time.Duration, opts ...ResolverOption) *Resolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	r := &Resolver{
		lookup: lookup,
		cache:  c,
		ttl:    ttl,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the role and status of userID. A missing profile is an error.
func (r *Resolver) Resolve(ctx context.Context, userID string) (profile.RoleStatus, error) {
	ctx, span := r.tracer.Start(ctx, "gate.resolve_role")
	defer span.End()

	now := r.now()
	entry, found := r.cache.Get(ctx, userID)
	switch {
	case found && entry.Fresh(now):
		metrics.ObserveCacheLookup("hit")
		span.SetAttributes(attribute.String("cache.result", "hit"))
		return profile.RoleStatus{Role: entry.Role, Status: entry.Status}, nil
	case found:
		metrics.ObserveCacheLookup("stale")
		span.SetAttributes(attribute.String("cache.result", "stale"))
	default:
		metrics.ObserveCacheLookup("miss")
		span.SetAttributes(attribute.String("cache.result", "miss"))
	}

	rs, errLookup := r.lookup.GetRoleStatus(ctx, userID)
	if errLookup != nil {
		span.RecordError(errLookup)
		span.SetStatus(codes.Error, errLookup.Error())
		return profile.RoleStatus{}, fmt.Errorf("gate: resolve role: %w", errLookup)
	}

	r.cache.Set(ctx, userID, cache.Entry{Role: rs.Role, Status: rs.Status, ExpiresAt: now.Add(r.ttl)})
	return rs, nil
}
