package roles

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Role, int, error)
	Get(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, name, description string) (Role, error)
	Update(ctx context.Context, id int64, name, description string) (Role, error)
	Delete(ctx context.Context, id int64) error
	ReplacePermissions(ctx context.Context, id int64, permissionIDs []int64) error
}

// Service handles role business logic. The admin role is protected from
// renames and deletion since the access gate treats it as a wildcard.
type Service struct {
	repo      RepositoryPort
	adminRole string
	auditor   shared.Auditor
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, adminRole string, auditor shared.Auditor) *Service {
	if auditor == nil {
		auditor = shared.NopAuditor{}
	}
	return &Service{repo: repo, adminRole: shared.NormalizeKey(adminRole), auditor: auditor}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Role, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Role, error) {
	name := shared.NormalizeKey(req.Name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	role, err := s.repo.Create(ctx, name, strings.TrimSpace(req.Description))
	if err != nil {
		return Role{}, err
	}
	s.audit(ctx, "create", role.ID, map[string]any{"name": role.Name})
	return role, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Role, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, err
	}
	name, description := current.Name, current.Description
	if req.Name != nil {
		name = shared.NormalizeKey(*req.Name)
		if name == "" {
			return Role{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
		}
	}
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}
	if s.isAdmin(current.Name) && name != current.Name {
		return Role{}, fmt.Errorf("%w: the %s role cannot be renamed", httpx.ErrConflict, current.Name)
	}
	role, err := s.repo.Update(ctx, id, name, description)
	if err != nil {
		return Role{}, err
	}
	s.audit(ctx, "update", id, map[string]any{"name": role.Name})
	return role, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if s.isAdmin(current.Name) {
		return fmt.Errorf("%w: the %s role cannot be deleted", httpx.ErrConflict, current.Name)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "delete", id, map[string]any{"name": current.Name})
	return nil
}

// ReplacePermissions sets the exact permission set of a role and returns the
// refreshed role.
func (s *Service) ReplacePermissions(ctx context.Context, id int64, permissionIDs []int64) (Role, error) {
	ids := slices.Clone(permissionIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if err := s.repo.ReplacePermissions(ctx, id, ids); err != nil {
		return Role{}, err
	}
	s.audit(ctx, "assign_permissions", id, map[string]any{"permission_ids": ids})
	return s.repo.Get(ctx, id)
}

func (s *Service) isAdmin(name string) bool {
	return s.adminRole != "" && shared.NormalizeKey(name) == s.adminRole
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	s.auditor.Log(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
