package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// IdentityResolver resolves the caller behind a request. It returns
// shared.ErrSessionNotFound when the request carries no usable credential.
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) (shared.Identity, error)
}

// GrantLookup loads the roles held by a user.
type GrantLookup interface {
	RoleGrantsForUser(ctx context.Context, userID int64) ([]RoleGrant, error)
}

// Decision enumerates gate outcomes.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
	Internal
)

// String returns the label used in logs and metrics.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Outcome is the result of a gate check.
type Outcome struct {
	Decision Decision
	Identity shared.Identity
	Err      error
}

// Status maps the outcome to an HTTP status code.
func (o Outcome) Status() int {
	switch o.Decision {
	case Allow:
		return http.StatusOK
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client facing error message for a denial.
func (o Outcome) Message() string {
	switch o.Decision {
	case Unauthenticated:
		return httpx.MsgUnauthorized
	case Forbidden:
		return httpx.MsgInsufficientPerms
	case Internal:
		return httpx.MsgInternal
	default:
		return ""
	}
}

// GateOption customises a Gate.
type GateOption func(*Gate)

// WithObserver registers a callback invoked once per check.
func WithObserver(fn func(Outcome)) GateOption {
	return func(g *Gate) { g.observe = fn }
}

// Gate guards handlers behind an authenticated identity and, optionally, a
// permission. Grants are loaded on every check so role changes apply to the
// next request.
type Gate struct {
	resolver  IdentityResolver
	lookup    GrantLookup
	adminRole string
	logger    *slog.Logger
	observe   func(Outcome)
}

// NewGate constructs a Gate.
func NewGate(resolver IdentityResolver, lookup GrantLookup, adminRole string, logger *slog.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{resolver: resolver, lookup: lookup, adminRole: shared.NormalizeKey(adminRole), logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check evaluates the request. With no permissions it only authenticates; with
// several, any one of them suffices. Panics in collaborators become Internal.
func (g *Gate) Check(r *http.Request, perms ...string) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{Decision: Internal, Err: fmt.Errorf("rbac: panic during check: %v", rec)}
		}
		if g.observe != nil {
			g.observe(out)
		}
	}()

	identity, err := g.resolver.Resolve(r.Context(), r)
	if err != nil {
		if errors.Is(err, shared.ErrSessionNotFound) {
			return Outcome{Decision: Unauthenticated}
		}
		return Outcome{Decision: Internal, Err: fmt.Errorf("rbac: resolve session: %w", err)}
	}
	if identity.UserID <= 0 {
		return Outcome{Decision: Unauthenticated}
	}
	if len(perms) == 0 {
		return Outcome{Decision: Allow, Identity: identity}
	}

	grants, err := g.lookup.RoleGrantsForUser(r.Context(), identity.UserID)
	if err != nil {
		return Outcome{Decision: Internal, Identity: identity, Err: fmt.Errorf("rbac: load grants: %w", err)}
	}
	if !AllowedAny(grants, perms, g.adminRole) {
		return Outcome{Decision: Forbidden, Identity: identity}
	}
	return Outcome{Decision: Allow, Identity: identity}
}

// Require returns middleware that demands perm.
func (g *Gate) Require(perm string) func(http.Handler) http.Handler {
	return g.guard([]string{perm})
}

// RequireAny returns middleware that demands at least one of perms.
func (g *Gate) RequireAny(perms ...string) func(http.Handler) http.Handler {
	if len(perms) == 0 {
		// An empty requirement list must not degrade into authentication only.
		perms = []string{""}
	}
	return g.guard(perms)
}

// Authenticated returns middleware that only demands a valid identity.
func (g *Gate) Authenticated() func(http.Handler) http.Handler {
	return g.guard(nil)
}

func (g *Gate) guard(perms []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := g.Check(r, perms...)
			if out.Decision != Allow {
				g.deny(w, r, out, perms)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), out.Identity)))
		})
	}
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, out Outcome, perms []string) {
	switch out.Decision {
	case Internal:
		g.logger.Error("authorization check failed",
			slog.String("path", r.URL.Path),
			slog.Any("permissions", perms),
			slog.Any("error", out.Err))
	case Forbidden:
		g.logger.Debug("authorization denied",
			slog.String("path", r.URL.Path),
			slog.Int64("user_id", out.Identity.UserID),
			slog.Any("permissions", perms))
	}
	httpx.Error(w, out.Status(), out.Message())
}

// Guard is the slice of Gate that resource handlers depend on.
type Guard interface {
	Require(perm string) func(http.Handler) http.Handler
}

var _ Guard = (*Gate)(nil)
