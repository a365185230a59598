package industries

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/eapdesk/eapdesk/internal/httpcache"
	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/rbac"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

// listCache applies to the industry list. Industries are reference data and
// change rarely.
var listCache = httpcache.Options{MaxAge: 5 * time.Minute, StaleWhileRevalidate: time.Minute}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Guard
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: httpx.NewValidator()}
}

// MountRoutes registers industry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(core.PermIndustryRead)).Get("/", h.List)
	r.With(h.guard.Require(core.PermIndustryRead)).Get("/{id}", h.Show)
	r.With(h.guard.Require(core.PermIndustryCreate)).Post("/", h.Create)
	r.With(h.guard.Require(core.PermIndustryUpdate)).Put("/{id}", h.Update)
	r.With(h.guard.Require(core.PermIndustryUpdate)).Patch("/{id}", h.Update)
	r.With(h.guard.Require(core.PermIndustryDelete)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "list industries failed", err)
		return
	}
	if err := httpcache.JSON(w, r, http.StatusOK, core.NewPage(items, filters.ListFilters, total), listCache); err != nil {
		h.logger.Warn("write industries", slog.Any("error", err))
	}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	industry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get industry failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, industry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req IndustryRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	industry, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create industry failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, industry)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req IndustryRequest
	if err := httpx.Bind(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	industry, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update industry failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, industry)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete industry failed", err)
		return
	}
	httpx.NoContent(w)
}
