package shared

const (
	// Record statuses shared by clients, staff and beneficiaries.
	StatusActive   = "active"
	StatusInactive = "inactive"

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ValidStatus reports whether s is a known record status.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive
}
