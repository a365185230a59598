package beneficiaries

import (
	"context"
	"fmt"
	"strconv"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

type Service struct {
	repo    Repository
	auditor core.Auditor
}

func NewService(repo Repository, auditor core.Auditor) *Service {
	if auditor == nil {
		auditor = core.NopAuditor{}
	}
	return &Service{repo: repo, auditor: auditor}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Beneficiary, int, error) {
	return s.repo.List(ctx, filters)
}

// ListForClient lists the beneficiaries of one client. An unknown client is
// reported as not found rather than as an empty page.
func (s *Service) ListForClient(ctx context.Context, clientID int64, filters shared.ListFilters) ([]Beneficiary, int, error) {
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, shared.ErrNotFound
	}
	filters.ClientID = &clientID
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Beneficiary, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Beneficiary, error) {
	b := normalize(req.toBeneficiary())
	if err := s.validate(b); err != nil {
		return Beneficiary{}, err
	}
	exists, err := s.repo.ClientExists(ctx, b.ClientID)
	if err != nil {
		return Beneficiary{}, err
	}
	if !exists {
		return Beneficiary{}, fmt.Errorf("%w: client does not exist", shared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return Beneficiary{}, err
	}
	s.audit(ctx, "create", created.ID, map[string]any{"client_id": created.ClientID})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Beneficiary, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Beneficiary{}, err
	}
	next := normalize(req.apply(current))
	if err := s.validate(next); err != nil {
		return Beneficiary{}, err
	}
	updated, err := s.repo.Update(ctx, id, next)
	if err != nil {
		return Beneficiary{}, err
	}
	s.audit(ctx, "update", id, nil)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "delete", id, nil)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	s.auditor.Log(ctx, core.AuditLog{
		ActorID:  core.ActorID(ctx),
		Action:   action,
		Entity:   "beneficiary",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
