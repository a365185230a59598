package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, id int64, m Member) (Member, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, first_name, last_name, email, title, phone, status, created_at, updated_at`

var sortable = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"email":      "email",
	"created_at": "created_at",
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error) {
	var where shared.Where
	if filters.Status != "" {
		where.Add("status = ?", filters.Status)
	}
	where.Search(filters.Search, "first_name", "last_name", "email", "title")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters.Limit, filters.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM staff`+where.SQL()+
		shared.OrderBy(filters.SortBy, filters.SortDir, sortable, "last_name")+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Member, error) {
	return one(scanMember(r.db.QueryRow(ctx, `SELECT `+columns+` FROM staff WHERE id = $1`, id)))
}

func (r *repository) Create(ctx context.Context, m Member) (Member, error) {
	return one(scanMember(r.db.QueryRow(ctx, `
		INSERT INTO staff (first_name, last_name, email, title, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		m.FirstName, m.LastName, m.Email, m.Title, m.Phone, m.Status)))
}

func (r *repository) Update(ctx context.Context, id int64, m Member) (Member, error) {
	return one(scanMember(r.db.QueryRow(ctx, `
		UPDATE staff
		SET first_name = $1, last_name = $2, email = $3, title = $4, phone = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+columns,
		m.FirstName, m.LastName, m.Email, m.Title, m.Phone, m.Status, id)))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Title, &m.Phone, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func one(m Member, err error) (Member, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, shared.ErrNotFound
	}
	if err != nil {
		return Member{}, httpx.MapPgError(err)
	}
	return m, nil
}
