package shared

import (
	"net/url"
	"testing"
)

func TestParseListFiltersDefaults(t *testing.T) {
	f := ParseListFilters(url.Values{})
	if f.Page != 1 || f.Limit != defaultPerPage || f.SortDir != "asc" {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if f.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", f.Offset())
	}
}

func TestParseListFiltersClampsLimit(t *testing.T) {
	f := ParseListFilters(url.Values{"page": {"3"}, "limit": {"500"}, "dir": {"DESC"}, "search": {"  acme "}})
	if f.Limit != maxPerPage {
		t.Fatalf("expected limit clamp to %d, got %d", maxPerPage, f.Limit)
	}
	if f.Offset() != 2*maxPerPage {
		t.Fatalf("unexpected offset %d", f.Offset())
	}
	if f.SortDir != "desc" || f.Search != "acme" {
		t.Fatalf("unexpected filters: %+v", f)
	}
}

func TestNewPageNeverNilData(t *testing.T) {
	page := NewPage[int](nil, ListFilters{Page: 1, Limit: 10}, 25)
	if page.Data == nil {
		t.Fatal("expected empty slice")
	}
	if page.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.Pagination.TotalPages)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
		t.Fatalf("unexpected normalised email %q", got)
	}
}
