package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/platform/storage"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// Service stores document blobs and their metadata.
type Service struct {
	repo    Repository
	blobs   storage.BlobStore
	auditor shared.Auditor
	logger  *slog.Logger
	newID   func() string
}

// NewService constructs a Service.
func NewService(repo Repository, blobs storage.BlobStore, auditor shared.Auditor, logger *slog.Logger) *Service {
	if auditor == nil {
		auditor = shared.NopAuditor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, blobs: blobs, auditor: auditor, logger: logger, newID: uuid.NewString}
}

// StorageKey builds the object key for an upload.
func StorageKey(ownerType string, ownerID int64, id, fileName string) string {
	return fmt.Sprintf("documents/%s/%d/%s/%s", ownerType, ownerID, id, fileName)
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Document, int, error) {
	if filters.OwnerType != "" {
		if _, ok := ownerTables[filters.OwnerType]; !ok {
			return nil, 0, fmt.Errorf("%w: unknown owner_type", httpx.ErrValidation)
		}
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Document, error) {
	return s.repo.Get(ctx, id)
}

// Upload writes the object first and then records the row. When the row
// cannot be written the object is removed again.
func (s *Service) Upload(ctx context.Context, in Upload) (Document, error) {
	if _, ok := ownerTables[in.OwnerType]; !ok {
		return Document{}, fmt.Errorf("%w: owner_type must be one of: client staff beneficiary contract", httpx.ErrValidation)
	}
	if in.OwnerID <= 0 {
		return Document{}, fmt.Errorf("%w: owner_id is required", httpx.ErrValidation)
	}
	if in.Size <= 0 {
		return Document{}, fmt.Errorf("%w: file is empty", httpx.ErrValidation)
	}
	if in.Size > MaxUploadBytes {
		return Document{}, fmt.Errorf("%w: file exceeds %d bytes", httpx.ErrValidation, MaxUploadBytes)
	}
	name := cleanFileName(in.FileName)
	if name == "" {
		return Document{}, fmt.Errorf("%w: file name is required", httpx.ErrValidation)
	}
	exists, err := s.repo.OwnerExists(ctx, in.OwnerType, in.OwnerID)
	if err != nil {
		return Document{}, err
	}
	if !exists {
		return Document{}, fmt.Errorf("%w: %s %d does not exist", httpx.ErrValidation, in.OwnerType, in.OwnerID)
	}

	key := StorageKey(in.OwnerType, in.OwnerID, s.newID(), name)
	if err := s.blobs.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return Document{}, err
	}
	doc, err := s.repo.Create(ctx, Document{
		OwnerType:   in.OwnerType,
		OwnerID:     in.OwnerID,
		FileName:    name,
		ContentType: in.ContentType,
		SizeBytes:   in.Size,
		StorageKey:  key,
		UploadedBy:  shared.ActorID(ctx),
	})
	if err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			s.logger.Warn("remove orphaned document object", slog.String("key", key), slog.Any("error", derr))
		}
		return Document{}, err
	}
	s.audit(ctx, "create", doc.ID, map[string]any{"owner_type": doc.OwnerType, "owner_id": doc.OwnerID, "file_name": doc.FileName})
	return doc, nil
}

// Open returns the document row and its object body.
func (s *Service) Open(ctx context.Context, id int64) (Document, *storage.Object, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, nil, err
	}
	obj, err := s.blobs.Get(ctx, doc.StorageKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn("document object missing", slog.Int64("document_id", id), slog.String("key", doc.StorageKey))
		return Document{}, nil, errors.Join(httpx.ErrNotFound, err)
	}
	if err != nil {
		return Document{}, nil, err
	}
	return doc, obj, nil
}

// Delete removes the row first and then the object. A failed object delete
// leaves an orphan that is logged but not reported to the caller.
func (s *Service) Delete(ctx context.Context, id int64) error {
	doc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("remove document object", slog.String("key", doc.StorageKey), slog.Any("error", err))
	}
	s.audit(ctx, "delete", id, map[string]any{"file_name": doc.FileName})
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	s.auditor.Log(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "document",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

// cleanFileName keeps the base name and drops characters that would break
// object keys or Content-Disposition headers.
func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
