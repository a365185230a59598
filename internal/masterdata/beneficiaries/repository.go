package beneficiaries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Beneficiary, int, error)
	Get(ctx context.Context, id int64) (Beneficiary, error)
	Create(ctx context.Context, b Beneficiary) (Beneficiary, error)
	Update(ctx context.Context, id int64, b Beneficiary) (Beneficiary, error)
	Delete(ctx context.Context, id int64) error
	ClientExists(ctx context.Context, clientID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, client_id, first_name, last_name, email, relationship, status, created_at, updated_at`

var sortable = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"created_at": "created_at",
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Beneficiary, int, error) {
	var where shared.Where
	if filters.ClientID != nil {
		where.Add("client_id = ?", *filters.ClientID)
	}
	if filters.Status != "" {
		where.Add("status = ?", filters.Status)
	}
	where.Search(filters.Search, "first_name", "last_name", "email")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM beneficiaries`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters.Limit, filters.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM beneficiaries`+where.SQL()+
		shared.OrderBy(filters.SortBy, filters.SortDir, sortable, "last_name")+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Beneficiary, error) {
	return one(scanBeneficiary(r.db.QueryRow(ctx, `SELECT `+columns+` FROM beneficiaries WHERE id = $1`, id)))
}

func (r *repository) Create(ctx context.Context, b Beneficiary) (Beneficiary, error) {
	return one(scanBeneficiary(r.db.QueryRow(ctx, `
		INSERT INTO beneficiaries (client_id, first_name, last_name, email, relationship, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		b.ClientID, b.FirstName, b.LastName, b.Email, b.Relationship, b.Status)))
}

func (r *repository) Update(ctx context.Context, id int64, b Beneficiary) (Beneficiary, error) {
	return one(scanBeneficiary(r.db.QueryRow(ctx, `
		UPDATE beneficiaries
		SET first_name = $1, last_name = $2, email = $3, relationship = $4, status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+columns,
		b.FirstName, b.LastName, b.Email, b.Relationship, b.Status, id)))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM beneficiaries WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ClientExists(ctx context.Context, clientID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, clientID).Scan(&exists)
	return exists, err
}

func scanBeneficiary(row pgx.Row) (Beneficiary, error) {
	var b Beneficiary
	err := row.Scan(&b.ID, &b.ClientID, &b.FirstName, &b.LastName, &b.Email, &b.Relationship, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func one(b Beneficiary, err error) (Beneficiary, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Beneficiary{}, shared.ErrNotFound
	}
	if err != nil {
		return Beneficiary{}, httpx.MapPgError(err)
	}
	return b, nil
}
