package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
)

type memoryRepo struct {
	items  map[int64]Member
	nextID int64
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Member, int, error) {
	out := make([]Member, 0, len(m.items))
	for _, v := range m.items {
		out = append(out, v)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Member, error) {
	v, ok := m.items[id]
	if !ok {
		return Member{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) Create(_ context.Context, v Member) (Member, error) {
	for _, existing := range m.items {
		if existing.Email == v.Email {
			return Member{}, shared.ErrDuplicate
		}
	}
	m.nextID++
	v.ID = m.nextID
	m.items[v.ID] = v
	return v, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, v Member) (Member, error) {
	v.ID = id
	m.items[id] = v
	return v, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newService() *Service {
	return NewService(&memoryRepo{items: map[int64]Member{}}, nil)
}

func TestCreateStaffMember(t *testing.T) {
	svc := newService()
	m, err := svc.Create(context.Background(), CreateRequest{FirstName: " Ana ", LastName: "Lopez", Email: "Ana.Lopez@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", m.FirstName)
	assert.Equal(t, "ana.lopez@example.com", m.Email)
	assert.Equal(t, shared.StatusActive, m.Status)

	_, err = svc.Create(context.Background(), CreateRequest{FirstName: "A", LastName: "B", Email: "ana.lopez@example.com"})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUpdateStaffMember(t *testing.T) {
	svc := newService()
	m, err := svc.Create(context.Background(), CreateRequest{FirstName: "Ana", LastName: "Lopez", Email: "ana@example.com", Title: "Counsellor"})
	require.NoError(t, err)

	status := shared.StatusInactive
	updated, err := svc.Update(context.Background(), m.ID, UpdateRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, shared.StatusInactive, updated.Status)
	assert.Equal(t, "Counsellor", updated.Title)

	blank := "  "
	_, err = svc.Update(context.Background(), m.ID, UpdateRequest{LastName: &blank})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteMissingStaffMember(t *testing.T) {
	assert.ErrorIs(t, newService().Delete(context.Background(), 42), shared.ErrNotFound)
}
