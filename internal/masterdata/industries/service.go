package industries

import (
	"context"
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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Industry, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Industry, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req IndustryRequest) (Industry, error) {
	name, err := s.validate(req)
	if err != nil {
		return Industry{}, err
	}
	industry, err := s.repo.Create(ctx, name)
	if err != nil {
		return Industry{}, err
	}
	s.audit(ctx, "create", industry.ID, map[string]any{"name": industry.Name})
	return industry, nil
}

func (s *Service) Update(ctx context.Context, id int64, req IndustryRequest) (Industry, error) {
	name, err := s.validate(req)
	if err != nil {
		return Industry{}, err
	}
	industry, err := s.repo.Update(ctx, id, name)
	if err != nil {
		return Industry{}, err
	}
	s.audit(ctx, "update", industry.ID, map[string]any{"name": industry.Name})
	return industry, nil
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
		Entity:   "industry",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
