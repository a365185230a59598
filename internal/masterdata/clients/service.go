package clients

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Client, error) {
	client := normalize(req.toClient())
	if err := s.validate(client); err != nil {
		return Client{}, err
	}
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return Client{}, err
	}
	s.audit(ctx, "create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Client, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	next := normalize(req.apply(current))
	if err := s.validate(next); err != nil {
		return Client{}, err
	}
	updated, err := s.repo.Update(ctx, id, next)
	if err != nil {
		return Client{}, err
	}
	s.audit(ctx, "update", id, map[string]any{"code": updated.Code, "status": updated.Status})
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
		Entity:   "client",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}
