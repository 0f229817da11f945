// Package gate implements the session gate: a request middleware that redirects callers
// away from pages their session, role or account status does not allow.
package gate

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/metrics"
	"github.com/pac-voluntarios/portal/internal/profile"
	"github.com/pac-voluntarios/portal/internal/session"
	log "github.com/sirupsen/logrus"
)

// FailurePolicy decides what happens to a request when a session or profile lookup fails.
type FailurePolicy string

// Failure policies.
const (
	// PolicyAllow passes the request through unchanged.
	PolicyAllow FailurePolicy = config.FailurePolicyAllow
	// PolicyDeny redirects the caller to the login route.
	PolicyDeny FailurePolicy = config.FailurePolicyDeny
)

// ParseFailurePolicy parses a configured policy name; empty means allow.
func ParseFailurePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyAllow:
		return PolicyAllow, nil
	case PolicyDeny:
		return PolicyDeny, nil
	default:
		return "", fmt.Errorf("gate: unknown failure policy %q", raw)
	}
}

// Decision outcomes, also used as metric labels.
const (
	OutcomeSkip         = "skip"
	OutcomePass         = "pass"
	OutcomeLogin        = "login"
	OutcomeInactive     = "inactive"
	OutcomeUnauthorized = "unauthorized"
	OutcomeLanding      = "landing"
	OutcomeFailOpen     = "fail_open"
	OutcomeFailClosed   = "fail_closed"
)

// Decision is the gate verdict for one request. An empty Location passes the request on.
type Decision struct {
	Outcome  string
	Location string
}

// Redirect reports whether the decision redirects the caller.
func (d Decision) Redirect() bool { return d.Location != "" }

// Gate evaluates requests against the path rules.
type Gate struct {
	sessions   session.Provider
	resolver   *Resolver
	classifier Classifier
	routes     config.RoutesConfig
	policy     FailurePolicy
}

// New constructs a Gate.
func New(sessions session.Provider, resolver *Resolver, routes config.RoutesConfig, policy FailurePolicy) *Gate {
	if policy == "" {
		policy = PolicyAllow
	}
	return &Gate{
		sessions:   sessions,
		resolver:   resolver,
		classifier: NewClassifier(routes.PublicPaths),
		routes:     routes,
		policy:     policy,
	}
}

// Policy returns the configured failure policy.
func (g *Gate) Policy() FailurePolicy { return g.policy }

// Evaluate decides what to do with r. It never panics; failures are handled by the policy.
// When the caller has a session, w receives the refreshed session cookie if one is due.
func (g *Gate) Evaluate(w http.ResponseWriter, r *http.Request) (d Decision) {
	path := r.URL.Path
	if Excluded(path) {
		return Decision{Outcome: OutcomeSkip}
	}
	class := g.classifier.Classify(path)

	defer func() {
		if rec := recover(); rec != nil {
			d = g.onFailure(path, class, fmt.Errorf("gate: panic: %v", rec))
		}
	}()

	d, errEval := g.evaluate(w, r, path, class)
	if errEval != nil {
		return g.onFailure(path, class, errEval)
	}
	return d
}

func (g *Gate) evaluate(w http.ResponseWriter, r *http.Request, path string, class PathClass) (Decision, error) {
	if class == ClassUnclassified {
		return Decision{Outcome: OutcomePass}, nil
	}

	id, errSession := g.sessions.Resolve(r)
	if errSession != nil {
		return Decision{}, fmt.Errorf("gate: resolve session: %w", errSession)
	}
	d, errDecide := g.decide(r, path, class, id)
	if errDecide != nil {
		return Decision{}, errDecide
	}
	if id != nil {
		// Disabled accounts lose their session on the way to login.
		if d.Outcome == OutcomeInactive {
			g.sessions.Clear(w)
		} else {
			g.sessions.Refresh(w, r, id)
		}
	}
	return d, nil
}

func (g *Gate) decide(r *http.Request, path string, class PathClass, id *session.Identity) (Decision, error) {
	switch class {
	case ClassPublic:
		if id == nil {
			return Decision{Outcome: OutcomePass}, nil
		}
		rs, errRole := g.resolver.Resolve(r.Context(), id.UserID)
		if errRole != nil {
			return Decision{}, errRole
		}
		if rs.Role.IsAdmin() {
			return Decision{Outcome: OutcomeLanding, Location: g.routes.AdminLanding}, nil
		}
		return Decision{Outcome: OutcomeLanding, Location: g.routes.AgentLanding}, nil

	case ClassAdmin:
		if id == nil {
			return Decision{Outcome: OutcomeLogin, Location: g.loginWithReturn(path)}, nil
		}
		rs, errRole := g.resolver.Resolve(r.Context(), id.UserID)
		if errRole != nil {
			return Decision{}, errRole
		}
		if !rs.Role.IsAdmin() {
			return Decision{Outcome: OutcomeUnauthorized, Location: g.routes.Unauthorized}, nil
		}
		if !rs.Status.Active() {
			return Decision{Outcome: OutcomeInactive, Location: g.routes.Login}, nil
		}
		return Decision{Outcome: OutcomePass}, nil

	case ClassAgent:
		if id == nil {
			return Decision{Outcome: OutcomeLogin, Location: g.loginWithReturn(path)}, nil
		}
		rs, errRole := g.resolver.Resolve(r.Context(), id.UserID)
		if errRole != nil {
			return Decision{}, errRole
		}
		if !rs.Status.Active() {
			return Decision{Outcome: OutcomeInactive, Location: g.routes.Login}, nil
		}
		return Decision{Outcome: OutcomePass}, nil
	}

	return Decision{Outcome: OutcomePass}, nil
}

// onFailure applies the failure policy. Public pages always pass so deny cannot loop on login.
func (g *Gate) onFailure(path string, class PathClass, err error) Decision {
	metrics.ObserveGateFailure(string(g.policy))
	entry := log.WithError(err).WithFields(log.Fields{
		"path":   path,
		"class":  class.String(),
		"policy": string(g.policy),
	})
	if errors.Is(err, profile.ErrNotFound) {
		entry = entry.WithField("profile", "missing")
	}
	if g.policy == PolicyDeny && class != ClassPublic {
		entry.Warn("session gate lookup failed, redirecting to login")
		return Decision{Outcome: OutcomeFailClosed, Location: g.loginWithReturn(path)}
	}
	entry.Warn("session gate lookup failed, passing request through")
	return Decision{Outcome: OutcomeFailOpen}
}

func (g *Gate) loginWithReturn(path string) string {
	return g.routes.Login + "?redirect=" + url.QueryEscape(path)
}

// Middleware runs the gate in front of the gin handlers.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Evaluate(c.Writer, c.Request)
		metrics.ObserveGateDecision(d.Outcome)
		if d.Redirect() {
			c.Redirect(http.StatusTemporaryRedirect, d.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}
