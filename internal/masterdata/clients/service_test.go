package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

type memoryRepo struct {
	items  map[int64]Client
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Client{}}
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Client, int, error) {
	out := make([]Client, 0, len(m.items))
	for _, v := range m.items {
		out = append(out, v)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Client, error) {
	v, ok := m.items[id]
	if !ok {
		return Client{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) Create(_ context.Context, c Client) (Client, error) {
	for _, existing := range m.items {
		if existing.Code == c.Code {
			return Client{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	c.ID = m.nextID
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, c Client) (Client, error) {
	if _, ok := m.items[id]; !ok {
		return Client{}, shared.ErrNotFound
	}
	c.ID = id
	m.items[id] = c
	return c, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCreateNormalizes(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	industry := int64(3)
	c, err := svc.Create(context.Background(), CreateRequest{
		Code:         " acme-01 ",
		Name:         " Acme Corp ",
		IndustryID:   &industry,
		ContactEmail: "HR@Acme.Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-01", c.Code)
	assert.Equal(t, "Acme Corp", c.Name)
	assert.Equal(t, "hr@acme.example", c.ContactEmail)
	assert.Equal(t, shared.StatusActive, c.Status)
	require.NotNil(t, c.IndustryID)
	assert.EqualValues(t, 3, *c.IndustryID)

	_, err = svc.Create(context.Background(), CreateRequest{Code: "ACME-01", Name: "Other"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateOverlaysFields(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	industry := int64(3)
	c, err := svc.Create(context.Background(), CreateRequest{Code: "acme", Name: "Acme", IndustryID: &industry, Address: "Main St 1"})
	require.NoError(t, err)

	none := int64(0)
	name := "Acme Holdings"
	updated, err := svc.Update(context.Background(), c.ID, UpdateRequest{Name: &name, IndustryID: &none})
	require.NoError(t, err)
	assert.Equal(t, "Acme Holdings", updated.Name)
	assert.Nil(t, updated.IndustryID)
	assert.Equal(t, "Main St 1", updated.Address)
	assert.Equal(t, "ACME", updated.Code)
}

func TestUpdateValidates(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	c, err := svc.Create(context.Background(), CreateRequest{Code: "acme", Name: "Acme"})
	require.NoError(t, err)

	bad := "not-an-email"
	_, err = svc.Update(context.Background(), c.ID, UpdateRequest{ContactEmail: &bad})
	assert.ErrorIs(t, err, shared.ErrValidation)

	blank := "   "
	_, err = svc.Update(context.Background(), c.ID, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Update(context.Background(), 99, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
