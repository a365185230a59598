package rbac

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

var permissionPattern = regexp.MustCompile(`^[a-z0-9_]+:[a-z0-9_]+$`)

// Store is the persistence surface the Service relies on.
type Store interface {
	RoleGrantsForUser(ctx context.Context, userID int64) ([]RoleGrant, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	GetPermission(ctx context.Context, id int64) (Permission, error)
	CreatePermission(ctx context.Context, name, description string) (Permission, error)
	DeletePermission(ctx context.Context, id int64) error
}

// Service manages the permission catalogue.
type Service struct {
	store   Store
	auditor shared.Auditor
}

// NewService constructs a Service.
func NewService(store Store, auditor shared.Auditor) *Service {
	if auditor == nil {
		auditor = shared.NopAuditor{}
	}
	return &Service{store: store, auditor: auditor}
}

// RoleGrantsForUser returns the user's roles and their permissions.
func (s *Service) RoleGrantsForUser(ctx context.Context, userID int64) ([]RoleGrant, error) {
	return s.store.RoleGrantsForUser(ctx, userID)
}

// ListPermissions returns all permissions ordered by name.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.store.ListPermissions(ctx)
}

// GetPermission fetches one permission.
func (s *Service) GetPermission(ctx context.Context, id int64) (Permission, error) {
	return s.store.GetPermission(ctx, id)
}

// CreatePermission registers a new "<resource>:<action>" permission.
func (s *Service) CreatePermission(ctx context.Context, name, description string) (Permission, error) {
	name = shared.NormalizeKey(name)
	if !permissionPattern.MatchString(name) {
		return Permission{}, fmt.Errorf("%w: name must look like resource:action", httpx.ErrValidation)
	}
	perm, err := s.store.CreatePermission(ctx, name, strings.TrimSpace(description))
	if err != nil {
		return Permission{}, err
	}
	s.auditor.Log(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "create",
		Entity:   "permission",
		EntityID: fmt.Sprint(perm.ID),
		Meta:     map[string]any{"name": perm.Name},
	})
	return perm, nil
}

// DeletePermission removes a permission from the catalogue.
func (s *Service) DeletePermission(ctx context.Context, id int64) error {
	if err := s.store.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.auditor.Log(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "delete",
		Entity:   "permission",
		EntityID: fmt.Sprint(id),
	})
	return nil
}
