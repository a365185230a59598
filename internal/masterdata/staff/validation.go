package staff

import (
	"fmt"
	"strings"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

func normalize(m Member) Member {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.Email = core.NormalizeEmail(m.Email)
	m.Title = strings.TrimSpace(m.Title)
	m.Phone = strings.TrimSpace(m.Phone)
	if m.Status == "" {
		m.Status = shared.StatusActive
	}
	return m
}

func (s *Service) validate(m Member) error {
	switch {
	case m.FirstName == "":
		return fmt.Errorf("%w: first_name is required", shared.ErrValidation)
	case m.LastName == "":
		return fmt.Errorf("%w: last_name is required", shared.ErrValidation)
	case m.Email == "" || !shared.ValidEmail(m.Email):
		return fmt.Errorf("%w: email must be a valid email", shared.ErrValidation)
	case !shared.ValidStatus(m.Status):
		return fmt.Errorf("%w: status must be one of: active inactive", shared.ErrValidation)
	}
	return nil
}
