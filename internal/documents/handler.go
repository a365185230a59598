package documents

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/rbac"
	"github.com/eapdesk/eapdesk/internal/shared"
)

const (
	// multipartSlack covers the form fields and part headers around the file.
	multipartSlack = 1 << 20
	memoryLimit    = 8 << 20
	genericType    = "application/octet-stream"
)

// Handler exposes document upload, download and management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    rbac.Guard
	maxBytes int64
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, maxBytes: MaxUploadBytes}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(shared.PermDocumentRead)).Get("/", h.list)
	r.With(h.guard.Require(shared.PermDocumentRead)).Get("/{id}", h.show)
	r.With(h.guard.Require(shared.PermDocumentRead)).Get("/{id}/download", h.download)
	r.With(h.guard.Require(shared.PermDocumentCreate)).Post("/", h.upload)
	r.With(h.guard.Require(shared.PermDocumentDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	common := shared.ParseListFilters(q)
	filters := ListFilters{OwnerType: q.Get("owner_type"), Page: common.Page, Limit: common.Limit}
	if raw := q.Get("owner_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.RespondError(w, fmt.Errorf("%w: invalid owner_id", httpx.ErrValidation))
			return
		}
		filters.OwnerID = id
	}
	docs, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.Fail(w, h.logger, "list documents failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(docs, common, total))
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get document failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartSlack)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, httpx.MsgPayloadTooLarge)
			return
		}
		httpx.RespondError(w, fmt.Errorf("%w: expected a multipart form", httpx.ErrValidation))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: file is required", httpx.ErrValidation))
		return
	}
	defer file.Close()
	if header.Size > h.maxBytes {
		httpx.Error(w, http.StatusRequestEntityTooLarge, httpx.MsgPayloadTooLarge)
		return
	}

	ownerID, err := strconv.ParseInt(r.FormValue("owner_id"), 10, 64)
	if err != nil || ownerID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: owner_id is required", httpx.ErrValidation))
		return
	}

	contentType, err := detectContentType(file, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.Fail(w, h.logger, "inspect upload failed", err)
		return
	}

	doc, err := h.service.Upload(r.Context(), Upload{
		OwnerType:   r.FormValue("owner_type"),
		OwnerID:     ownerID,
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httpx.Fail(w, h.logger, "upload document failed", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, obj, err := h.service.Open(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "open document failed", err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("stream document", slog.Int64("document_id", id), slog.Any("error", err))
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Fail(w, h.logger, "delete document failed", err)
		return
	}
	httpx.NoContent(w)
}

// detectContentType sniffs the file header, falling back to the declared
// type when the content is not recognised. The reader is rewound afterwards.
func detectContentType(file io.ReadSeeker, declared string) (string, error) {
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if detected.Is(genericType) && declared != "" {
		return declared, nil
	}
	return detected.String(), nil
}
