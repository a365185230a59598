package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/rbac"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// GrantLookup resolves the roles held by a user.
type GrantLookup interface {
	RoleGrantsForUser(ctx context.Context, userID int64) ([]rbac.RoleGrant, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	grants GrantLookup
}

// NewService constructs a new Service.
func NewService(repo Repository, grants GrantLookup) *Service {
	return &Service{repo: repo, grants: grants}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, shared.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if !user.IsActive() {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// Profile returns the user with their role names and effective permissions.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	grants, err := s.grants.RoleGrantsForUser(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("auth: role lookup: %w", err)
	}
	roles := make([]string, 0, len(grants))
	seen := make(map[string]struct{})
	perms := make([]string, 0)
	for _, g := range grants {
		roles = append(roles, g.Role)
		for _, p := range g.Permissions {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			perms = append(perms, p)
		}
	}
	sort.Strings(roles)
	sort.Strings(perms)
	return Profile{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Status:      user.Status,
		Roles:       roles,
		Permissions: perms,
	}, nil
}
