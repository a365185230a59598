package industries

import (
	"fmt"
	"strings"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

func (s *Service) validate(req IndustryRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	return name, nil
}
