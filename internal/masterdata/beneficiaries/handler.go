package beneficiaries

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/rbac"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Guard
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: httpx.NewValidator()}
}

// MountRoutes registers beneficiary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(core.PermBeneficiaryRead)).Get("/", h.List)
	r.With(h.guard.Require(core.PermBeneficiaryRead)).Get("/{id}", h.Show)
	r.With(h.guard.Require(core.PermBeneficiaryCreate)).Post("/", h.Create)
	r.With(h.guard.Require(core.PermBeneficiaryUpdate)).Put("/{id}", h.Update)
	r.With(h.guard.Require(core.PermBeneficiaryUpdate)).Patch("/{id}", h.Update)
	r.With(h.guard.Require(core.PermBeneficiaryDelete)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "list beneficiaries failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, core.NewPage(items, filters.ListFilters, total))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get beneficiary failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create beneficiary failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update beneficiary failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete beneficiary failed", err)
		return
	}
	httpx.NoContent(w)
}

// ListForClient serves GET /clients/{id}/beneficiaries.
func (h *Handler) ListForClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.ListForClient(r.Context(), clientID, filters)
	if err != nil {
		httpx.Fail(w, h.logger, "list client beneficiaries failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, core.NewPage(items, filters.ListFilters, total))
}
