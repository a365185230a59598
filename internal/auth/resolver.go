package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/eapdesk/eapdesk/internal/shared"
)

const bearerScheme = "bearer"

// Resolver turns request credentials into an identity.
type Resolver struct {
	tokens   *Tokens
	sessions *shared.SessionManager
}

// NewResolver constructs a Resolver. Either dependency may be nil to disable
// that credential carrier.
func NewResolver(tokens *Tokens, sessions *shared.SessionManager) *Resolver {
	return &Resolver{tokens: tokens, sessions: sessions}
}

// Resolve returns the identity behind the request. A bearer token takes
// precedence over the session cookie. shared.ErrSessionNotFound means no usable
// credential; any other error is a store failure.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (shared.Identity, error) {
	if raw, ok := bearerToken(req); ok {
		if r.tokens == nil || raw == "" {
			return shared.Identity{}, shared.ErrSessionNotFound
		}
		userID, err := r.tokens.Verify(raw)
		if err != nil {
			return shared.Identity{}, shared.ErrSessionNotFound
		}
		return shared.Identity{UserID: userID, Via: shared.ViaBearer}, nil
	}

	if r.sessions == nil {
		return shared.Identity{}, shared.ErrSessionNotFound
	}
	sess, err := r.sessions.Load(ctx, req)
	if err != nil {
		if errors.Is(err, shared.ErrSessionNotFound) {
			return shared.Identity{}, shared.ErrSessionNotFound
		}
		return shared.Identity{}, err
	}
	return shared.Identity{UserID: sess.UserID, Via: shared.ViaCookie, SessionID: sess.ID}, nil
}

// bearerToken reports whether the request carries a bearer credential. A
// "Bearer" scheme with no token still counts as an attempt.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	return strings.TrimSpace(token), true
}
