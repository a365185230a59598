package industries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Industry, int, error)
	Get(ctx context.Context, id int64) (Industry, error)
	Create(ctx context.Context, name string) (Industry, error)
	Update(ctx context.Context, id int64, name string) (Industry, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, name, created_at, updated_at`

var sortable = map[string]string{"name": "name", "created_at": "created_at"}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Industry, int, error) {
	var where shared.Where
	where.Search(filters.Search, "name")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM industries`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters.Limit, filters.Offset())
	query := `SELECT ` + columns + ` FROM industries` + where.SQL() +
		shared.OrderBy(filters.SortBy, filters.SortDir, sortable, "name") + page
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Industry
	for rows.Next() {
		var i Industry
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Industry, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+columns+` FROM industries WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, name string) (Industry, error) {
	return r.scanOne(r.db.QueryRow(ctx, `INSERT INTO industries (name) VALUES ($1) RETURNING `+columns, name))
}

func (r *repository) Update(ctx context.Context, id int64, name string) (Industry, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`UPDATE industries SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING `+columns, name, id))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM industries WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) scanOne(row pgx.Row) (Industry, error) {
	var i Industry
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Industry{}, shared.ErrNotFound
	}
	if err != nil {
		return Industry{}, httpx.MapPgError(err)
	}
	return i, nil
}
