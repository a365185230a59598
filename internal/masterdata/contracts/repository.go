package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/masterdata/shared"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error)
	Get(ctx context.Context, id int64) (Contract, error)
	Create(ctx context.Context, c Contract) (Contract, error)
	Update(ctx context.Context, id int64, c Contract) (Contract, error)
	Delete(ctx context.Context, id int64) error
	ExpireEnded(ctx context.Context, today time.Time) (int64, error)
	DueForNotice(ctx context.Context, today, until time.Time) ([]ExpiryNotice, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, client_id, reference, start_date, end_date, sessions_included, status, expiry_notified_at, created_at, updated_at`

var sortable = map[string]string{
	"reference":  "reference",
	"start_date": "start_date",
	"end_date":   "end_date",
	"status":     "status",
	"created_at": "created_at",
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error) {
	var where shared.Where
	if filters.ClientID != nil {
		where.Add("client_id = ?", *filters.ClientID)
	}
	if filters.Status != "" {
		where.Add("status = ?", filters.Status)
	}
	where.Search(filters.Search, "reference")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contracts`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters.Limit, filters.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM contracts`+where.SQL()+
		shared.OrderBy(filters.SortBy, filters.SortDir, sortable, "end_date")+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Contract, error) {
	return one(scanContract(r.db.QueryRow(ctx, `SELECT `+columns+` FROM contracts WHERE id = $1`, id)))
}

func (r *repository) Create(ctx context.Context, c Contract) (Contract, error) {
	return one(scanContract(r.db.QueryRow(ctx, `
		INSERT INTO contracts (client_id, reference, start_date, end_date, sessions_included, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		c.ClientID, c.Reference, c.StartDate.Time, c.EndDate.Time, c.SessionsIncluded, c.Status)))
}

func (r *repository) Update(ctx context.Context, id int64, c Contract) (Contract, error) {
	return one(scanContract(r.db.QueryRow(ctx, `
		UPDATE contracts
		SET reference = $1, start_date = $2, end_date = $3, sessions_included = $4, status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+columns,
		c.Reference, c.StartDate.Time, c.EndDate.Time, c.SessionsIncluded, c.Status, id)))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExpireEnded moves active contracts whose end date has passed to expired.
func (r *repository) ExpireEnded(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE contracts SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND end_date < $1`, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DueForNotice returns active, not yet notified contracts ending between today
// and until whose client has a contact email.
func (r *repository) DueForNotice(ctx context.Context, today, until time.Time) ([]ExpiryNotice, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.reference, c.end_date, cl.name, cl.contact_email
		FROM contracts c
		JOIN clients cl ON cl.id = c.client_id
		WHERE c.status = 'active'
		  AND c.expiry_notified_at IS NULL
		  AND c.end_date >= $1 AND c.end_date <= $2
		  AND cl.contact_email <> ''
		ORDER BY c.end_date, c.id`, today, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var notices []ExpiryNotice
	for rows.Next() {
		var n ExpiryNotice
		if err := rows.Scan(&n.ContractID, &n.Reference, &n.EndDate, &n.ClientName, &n.ContactEmail); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

func (r *repository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE contracts SET expiry_notified_at = $1 WHERE id = $2`, at, id)
	return err
}

func scanContract(row pgx.Row) (Contract, error) {
	var c Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.Reference, &c.StartDate.Time, &c.EndDate.Time,
		&c.SessionsIncluded, &c.Status, &c.ExpiryNotifiedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func one(c Contract, err error) (Contract, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Contract{}, shared.ErrNotFound
	}
	if err != nil {
		return Contract{}, httpx.MapPgError(err)
	}
	return c, nil
}
