package rbac

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/eapdesk/eapdesk/internal/httpcache"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// catalogueCache governs caching of the permission list. The list is visible
// only to authenticated callers, so shared caches must not store it.
var catalogueCache = httpcache.Options{MaxAge: time.Minute, StaleWhileRevalidate: 5 * time.Minute, Private: true}

// PermissionsHandler exposes the permission catalogue.
type PermissionsHandler struct {
	logger    *slog.Logger
	service   *Service
	guard     Guard
	validator *validator.Validate
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service, guard Guard) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, guard: guard, validator: httpx.NewValidator()}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(shared.PermPermissionRead)).Get("/", h.listPermissions)
	r.With(h.guard.Require(shared.PermPermissionRead)).Get("/{id}", h.getPermission)
	r.With(h.guard.Require(shared.PermPermissionCreate)).Post("/", h.createPermission)
	r.With(h.guard.Require(shared.PermPermissionDelete)).Delete("/{id}", h.deletePermission)
}

type permissionRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.fail(w, "list permissions", err)
		return
	}
	if err := httpcache.JSON(w, r, http.StatusOK, map[string]any{"data": perms}, catalogueCache); err != nil {
		h.logger.Warn("write permissions", slog.Any("error", err))
	}
}

func (h *PermissionsHandler) getPermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	perm, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		h.fail(w, "get permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perm)
}

func (h *PermissionsHandler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	perm, err := h.service.CreatePermission(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, "create permission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, perm)
}

func (h *PermissionsHandler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		h.fail(w, "delete permission", err)
		return
	}
	httpx.NoContent(w)
}

func (h *PermissionsHandler) fail(w http.ResponseWriter, op string, err error) {
	httpx.Fail(w, h.logger, op, err)
}
