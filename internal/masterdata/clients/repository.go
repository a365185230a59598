package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error)
	Get(ctx context.Context, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, id int64, client Client) (Client, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, code, name, industry_id, contact_email, contact_phone, address, status, created_at, updated_at`

var sortable = map[string]string{"code": "code", "name": "name", "status": "status", "created_at": "created_at"}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Client, int, error) {
	var where shared.Where
	if filters.Status != "" {
		where.Add("status = ?", filters.Status)
	}
	if filters.IndustryID != nil {
		where.Add("industry_id = ?", *filters.IndustryID)
	}
	where.Search(filters.Search, "name", "code", "contact_email")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM clients`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters.Limit, filters.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM clients`+where.SQL()+
		shared.OrderBy(filters.SortBy, filters.SortDir, sortable, "name")+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Client, error) {
	return one(scanClient(r.db.QueryRow(ctx, `SELECT `+columns+` FROM clients WHERE id = $1`, id)))
}

func (r *repository) Create(ctx context.Context, c Client) (Client, error) {
	return one(scanClient(r.db.QueryRow(ctx, `
		INSERT INTO clients (code, name, industry_id, contact_email, contact_phone, address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+columns,
		c.Code, c.Name, c.IndustryID, c.ContactEmail, c.ContactPhone, c.Address, c.Status)))
}

func (r *repository) Update(ctx context.Context, id int64, c Client) (Client, error) {
	return one(scanClient(r.db.QueryRow(ctx, `
		UPDATE clients
		SET code = $1, name = $2, industry_id = $3, contact_email = $4, contact_phone = $5,
		    address = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING `+columns,
		c.Code, c.Name, c.IndustryID, c.ContactEmail, c.ContactPhone, c.Address, c.Status, id)))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.IndustryID, &c.ContactEmail, &c.ContactPhone,
		&c.Address, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func one(c Client, err error) (Client, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, shared.ErrNotFound
	}
	if err != nil {
		return Client{}, httpx.MapPgError(err)
	}
	return c, nil
}
