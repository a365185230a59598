package contracts

import (
	"fmt"
	"strings"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

func (s *Service) validate(c Contract) error {
	if c.ClientID <= 0 {
		return fmt.Errorf("%w: client_id is required", shared.ErrValidation)
	}
	if strings.TrimSpace(c.Reference) == "" {
		return fmt.Errorf("%w: reference is required", shared.ErrValidation)
	}
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", shared.ErrValidation)
	}
	if c.SessionsIncluded < 0 {
		return fmt.Errorf("%w: sessions_included must not be negative", shared.ErrValidation)
	}
	return nil
}

func checkTransition(from, to string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move contract from %s to %s", shared.ErrConflict, from, to)
	}
	return nil
}
