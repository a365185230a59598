package clients

import (
	"fmt"
	"strings"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

// normalize trims input, upper-cases the code and folds the contact email.
func normalize(c Client) Client {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	c.ContactEmail = core.NormalizeEmail(c.ContactEmail)
	c.ContactPhone = strings.TrimSpace(c.ContactPhone)
	c.Address = strings.TrimSpace(c.Address)
	if c.Status == "" {
		c.Status = shared.StatusActive
	}
	return c
}

func (s *Service) validate(c Client) error {
	if c.Code == "" {
		return fmt.Errorf("%w: code is required", shared.ErrValidation)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if !shared.ValidEmail(c.ContactEmail) {
		return fmt.Errorf("%w: contact_email must be a valid email", shared.ErrValidation)
	}
	if !shared.ValidStatus(c.Status) {
		return fmt.Errorf("%w: status must be one of: active inactive", shared.ErrValidation)
	}
	return nil
}
