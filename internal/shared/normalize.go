package shared

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeEmail trims and case-folds an email address.
func NormalizeEmail(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// NormalizeKey trims and case-folds a role or permission name.
func NormalizeKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
