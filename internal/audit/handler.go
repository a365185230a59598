package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/rbac"
	"github.com/eapdesk/eapdesk/internal/shared"
)

const (
	defaultDateRange = 7 * 24 * time.Hour
	dateLayout       = "2006-01-02"
)

// Handler exposes the audit timeline over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   rbac.Guard
	now     func() time.Time
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, now: time.Now}
}

// MountRoutes registers the timeline.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(shared.PermAuditRead)).Get("/", h.timeline)
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r.URL.Query())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "load audit timeline", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// parseFilters reads from/to as calendar days; to is inclusive. Without a
// range the last seven days are returned.
func (h *Handler) parseFilters(q url.Values) (TimelineFilters, error) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	to := today.Add(24 * time.Hour)
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			return TimelineFilters{}, fmt.Errorf("%w: to must use YYYY-MM-DD", httpx.ErrValidation)
		}
		to = day.Add(24 * time.Hour)
	}
	from := to.Add(-defaultDateRange)
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		day, err := time.Parse(dateLayout, v)
		if err != nil {
			return TimelineFilters{}, fmt.Errorf("%w: from must use YYYY-MM-DD", httpx.ErrValidation)
		}
		from = day
	}

	filters := TimelineFilters{
		From:     from,
		To:       to,
		Entity:   strings.TrimSpace(q.Get("entity")),
		EntityID: strings.TrimSpace(q.Get("entity_id")),
		Action:   strings.TrimSpace(q.Get("action")),
	}
	var err error
	if filters.ActorID, err = positiveInt(q, "actor_id"); err != nil {
		return TimelineFilters{}, err
	}
	page, err := positiveInt(q, "page")
	if err != nil {
		return TimelineFilters{}, err
	}
	pageSize, err := positiveInt(q, "page_size")
	if err != nil {
		return TimelineFilters{}, err
	}
	filters.Page, filters.PageSize = int(page), int(pageSize)
	return filters, nil
}

func positiveInt(q url.Values, name string) (int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", httpx.ErrValidation, name)
	}
	return v, nil
}
