package beneficiaries

import (
	"fmt"
	"strings"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	core "github.com/eapdesk/eapdesk/internal/shared"
)

func normalize(b Beneficiary) Beneficiary {
	b.FirstName = strings.TrimSpace(b.FirstName)
	b.LastName = strings.TrimSpace(b.LastName)
	b.Email = core.NormalizeEmail(b.Email)
	if b.Relationship == "" {
		b.Relationship = RelationshipEmployee
	}
	if b.Status == "" {
		b.Status = shared.StatusActive
	}
	return b
}

func (s *Service) validate(b Beneficiary) error {
	switch {
	case b.ClientID <= 0:
		return fmt.Errorf("%w: client_id is required", shared.ErrValidation)
	case b.FirstName == "":
		return fmt.Errorf("%w: first_name is required", shared.ErrValidation)
	case b.LastName == "":
		return fmt.Errorf("%w: last_name is required", shared.ErrValidation)
	case !shared.ValidEmail(b.Email):
		return fmt.Errorf("%w: email must be a valid email", shared.ErrValidation)
	case b.Relationship != RelationshipEmployee && b.Relationship != RelationshipDependent:
		return fmt.Errorf("%w: relationship must be one of: employee dependent", shared.ErrValidation)
	case !shared.ValidStatus(b.Status):
		return fmt.Errorf("%w: status must be one of: active inactive", shared.ErrValidation)
	}
	return nil
}
