package users

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, filters shared.ListFilters) ([]User, int, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, u User, passwordHash *string) (User, error)
	SoftDelete(ctx context.Context, id int64) error
	ReplaceRoles(ctx context.Context, id int64, roleIDs []int64) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	auditor  shared.Auditor
	hashCost int
}

// Option customises a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, auditor shared.Auditor, opts ...Option) *Service {
	if auditor == nil {
		auditor = shared.NopAuditor{}
	}
	s := &Service{repo: repo, auditor: auditor, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (User, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return User{}, err
	}
	u := User{
		Email:  shared.NormalizeEmail(req.Email),
		Name:   strings.TrimSpace(req.Name),
		Status: req.Status,
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	if u.Name == "" {
		return User{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	created, err := s.repo.Create(ctx, u, hash)
	if err != nil {
		return User{}, err
	}
	s.audit(ctx, "create", created.ID, map[string]any{"email": created.Email})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (User, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	next := current
	if req.Email != nil {
		next.Email = shared.NormalizeEmail(*req.Email)
		if next.Email == "" {
			return User{}, fmt.Errorf("%w: email is required", httpx.ErrValidation)
		}
	}
	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
		if next.Name == "" {
			return User{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
		}
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if id == shared.ActorID(ctx) && next.Status == StatusDisabled {
		return User{}, fmt.Errorf("%w: you cannot disable your own account", httpx.ErrConflict)
	}
	var hash *string
	if req.Password != nil {
		h, err := s.hash(*req.Password)
		if err != nil {
			return User{}, err
		}
		hash = &h
	}
	updated, err := s.repo.Update(ctx, id, next, hash)
	if err != nil {
		return User{}, err
	}
	meta := map[string]any{"email": updated.Email, "password_changed": hash != nil}
	if current.Status != updated.Status {
		meta["status"] = updated.Status
	}
	s.audit(ctx, "update", id, meta)
	return updated, nil
}

// Delete soft-deletes a user. Callers cannot delete themselves.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == shared.ActorID(ctx) {
		return fmt.Errorf("%w: you cannot delete your own account", httpx.ErrConflict)
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "delete", id, nil)
	return nil
}

// ReplaceRoles sets the exact role set of a user.
func (s *Service) ReplaceRoles(ctx context.Context, id int64, roleIDs []int64) (User, error) {
	ids := slices.Clone(roleIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if err := s.repo.ReplaceRoles(ctx, id, ids); err != nil {
		return User{}, err
	}
	s.audit(ctx, "assign_roles", id, map[string]any{"role_ids": ids})
	return s.repo.Get(ctx, id)
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("users: hash password: %w", err)
	}
	return string(b), nil
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	s.auditor.Log(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
