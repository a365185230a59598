package contracts

import (
	"context"
	"strconv"
	"strings"
	"time"

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Contract, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Contract, error) {
	start, err := shared.ParseDate(req.StartDate)
	if err != nil {
		return Contract{}, err
	}
	end, err := shared.ParseDate(req.EndDate)
	if err != nil {
		return Contract{}, err
	}
	c := Contract{
		ClientID:         req.ClientID,
		Reference:        strings.ToUpper(strings.TrimSpace(req.Reference)),
		StartDate:        start,
		EndDate:          end,
		SessionsIncluded: req.SessionsIncluded,
		Status:           req.Status,
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if err := s.validate(c); err != nil {
		return Contract{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Contract{}, err
	}
	s.audit(ctx, "create", created.ID, map[string]any{"reference": created.Reference, "status": created.Status})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Contract, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Contract{}, err
	}
	next := current
	if req.Reference != nil {
		next.Reference = strings.ToUpper(strings.TrimSpace(*req.Reference))
	}
	if req.StartDate != nil {
		if next.StartDate, err = shared.ParseDate(*req.StartDate); err != nil {
			return Contract{}, err
		}
	}
	if req.EndDate != nil {
		if next.EndDate, err = shared.ParseDate(*req.EndDate); err != nil {
			return Contract{}, err
		}
	}
	if req.SessionsIncluded != nil {
		next.SessionsIncluded = *req.SessionsIncluded
	}
	if req.Status != nil {
		next.Status = *req.Status
	}
	if err := s.validate(next); err != nil {
		return Contract{}, err
	}
	if err := checkTransition(current.Status, next.Status); err != nil {
		return Contract{}, err
	}
	updated, err := s.repo.Update(ctx, id, next)
	if err != nil {
		return Contract{}, err
	}
	meta := map[string]any{"reference": updated.Reference}
	if current.Status != updated.Status {
		meta["from"] = current.Status
		meta["to"] = updated.Status
	}
	s.audit(ctx, "update", id, meta)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, "delete", id, nil)
	return nil
}

// ExpireEnded marks active contracts that ended before today as expired.
func (s *Service) ExpireEnded(ctx context.Context, today time.Time) (int64, error) {
	return s.repo.ExpireEnded(ctx, truncateDay(today))
}

// DueForNotice lists active contracts ending within horizon of today that
// have not been notified yet.
func (s *Service) DueForNotice(ctx context.Context, today time.Time, horizon time.Duration) ([]ExpiryNotice, error) {
	day := truncateDay(today)
	return s.repo.DueForNotice(ctx, day, day.Add(horizon))
}

// MarkNotified stamps the expiry notice time on a contract.
func (s *Service) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	return s.repo.MarkNotified(ctx, id, at)
}

func (s *Service) audit(ctx context.Context, action string, id int64, meta map[string]any) {
	s.auditor.Log(ctx, core.AuditLog{
		ActorID:  core.ActorID(ctx),
		Action:   action,
		Entity:   "contract",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
