// Package audit serves the read side of the audit trail written by
// shared.AuditLogger.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxRange is the widest window a query may span.
	MaxRange = 90 * 24 * time.Hour
)

// Service coordinates audit timeline reads.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	if err := checkRange(filters); err != nil {
		return Result{}, err
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	params := windowParams(filters)
	params.Offset = int32((page - 1) * pageSize)
	params.Limit = int32(pageSize + 1)
	rows, err := s.repo.Window(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("audit: timeline: %w", err)
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	if rows == nil {
		rows = []Entry{}
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Data: rows, Paging: paging}, nil
}

func checkRange(f TimelineFilters) error {
	if f.From.IsZero() || f.To.IsZero() {
		return nil
	}
	if !f.To.After(f.From) {
		return fmt.Errorf("%w: to must be after from", httpx.ErrValidation)
	}
	if f.To.Sub(f.From) > MaxRange {
		return fmt.Errorf("%w: range must not exceed 90 days", httpx.ErrValidation)
	}
	return nil
}

func windowParams(f TimelineFilters) WindowParams {
	return WindowParams{
		FromAt:   toPgTime(f.From),
		ToAt:     toPgTime(f.To),
		ActorID:  optionalID(f.ActorID),
		Entity:   optionalText(f.Entity),
		EntityID: optionalText(f.EntityID),
		Action:   optionalText(f.Action),
	}
}
