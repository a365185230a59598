package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereBuildsPositionalClause(t *testing.T) {
	var w Where
	w.Add("status = ?", "active")
	w.Search("acme", "name", "code")
	w.Add("client_id = ?", int64(4))

	assert.Equal(t, " WHERE status = $1 AND (name ILIKE $2 OR code ILIKE $2) AND client_id = $3", w.SQL())
	assert.Equal(t, []any{"active", "%acme%", int64(4)}, w.Args())

	page, args := w.Page(20, 40)
	assert.Equal(t, " LIMIT $4 OFFSET $5", page)
	assert.Equal(t, []any{"active", "%acme%", int64(4), 20, 40}, args)
	assert.Len(t, w.Args(), 3, "Page must not mutate the count arguments")
}

func TestWhereEmpty(t *testing.T) {
	var w Where
	w.Search("")
	assert.Empty(t, w.SQL())
	page, args := w.Page(10, 0)
	assert.Equal(t, " LIMIT $1 OFFSET $2", page)
	assert.Equal(t, []any{10, 0}, args)
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"name": "name", "created": "created_at"}
	assert.Equal(t, " ORDER BY created_at DESC, id DESC", OrderBy("created", "desc", allowed, "name"))
	assert.Equal(t, " ORDER BY name ASC, id ASC", OrderBy("1; DROP TABLE clients", "asc", allowed, "name"))
}

func TestParseListFilters(t *testing.T) {
	f := ParseListFilters(url.Values{"client_id": {"12"}, "industry_id": {"x"}, "page": {"2"}})
	if assert.NotNil(t, f.ClientID) {
		assert.Equal(t, int64(12), *f.ClientID)
	}
	assert.Nil(t, f.IndustryID)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 20, f.Limit)
}
