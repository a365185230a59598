package shared

import (
	"net/url"
	"strconv"

	core "github.com/eapdesk/eapdesk/internal/shared"
)

// ListFilters represents list query parameters for master data endpoints.
type ListFilters struct {
	core.ListFilters

	// Entity specific filters
	ClientID   *int64
	IndustryID *int64
}

// ParseListFilters reads the common filters plus client_id and industry_id.
func ParseListFilters(q url.Values) ListFilters {
	f := ListFilters{ListFilters: core.ParseListFilters(q)}
	f.ClientID = optionalID(q.Get("client_id"))
	f.IndustryID = optionalID(q.Get("industry_id"))
	return f
}

func optionalID(raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
