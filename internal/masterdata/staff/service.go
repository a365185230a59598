package staff

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Member, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Member, error) {
	m := normalize(req.toMember())
	if err := s.validate(m); err != nil {
		return Member{}, err
	}
	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return Member{}, err
	}
	s.audit(ctx, "create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Member, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Member{}, err
	}
	next := normalize(req.apply(current))
	if err := s.validate(next); err != nil {
		return Member{}, err
	}
	updated, err := s.repo.Update(ctx, id, next)
	if err != nil {
		return Member{}, err
	}
	s.audit(ctx, "update", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "delete", id)
	return nil
}

func (s *Service) audit(ctx context.Context, action string, id int64) {
	s.auditor.Log(ctx, core.AuditLog{
		ActorID:  core.ActorID(ctx),
		Action:   action,
		Entity:   "staff",
		EntityID: strconv.FormatInt(id, 10),
	})
}
