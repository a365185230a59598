package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// Middlewares carries the route guards the auth routes need.
type Middlewares struct {
	// RequireSession rejects requests without a resolved identity.
	RequireSession func(http.Handler) http.Handler
	// Throttle limits credential submissions per client.
	Throttle func(http.Handler) http.Handler
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	tokens         *Tokens
	validator      *validator.Validate
	mw             Middlewares
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, tokens *Tokens, mw Middlewares) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if mw.Throttle == nil {
		mw.Throttle = passthrough
	}
	if mw.RequireSession == nil {
		mw.RequireSession = passthrough
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		tokens:         tokens,
		validator:      httpx.NewValidator(),
		mw:             mw,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Throttle)
		r.Post("/login", h.handleLogin)
		r.Post("/token", h.handleToken)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireSession)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	ip := clientIP(r)
	sess, err := h.sessionManager.Create(r.Context(), w, user.ID, ip, r.UserAgent())
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err), slog.Int64("user_id", user.ID))
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, sess.ExpiresAt, ip, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	profile, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("load profile after login", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	token, expiresAt, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt.UTC()})
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (*User, bool) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err))
		return nil, false
	}
	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, httpx.MsgInvalidCredentials)
			return nil, false
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return nil, false
	}
	return user, true
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, _ := shared.IdentityFromContext(r.Context())
	if id.Via == shared.ViaCookie && id.SessionID != "" {
		if err := h.sessionManager.Destroy(r.Context(), w, id.SessionID); err != nil {
			h.logger.Error("destroy session", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
			return
		}
		if err := h.service.RemoveSession(r.Context(), id.SessionID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	httpx.NoContent(w)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Profile(r.Context(), shared.ActorID(r.Context()))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.Error(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
			return
		}
		h.logger.Error("load profile", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func passthrough(next http.Handler) http.Handler { return next }
