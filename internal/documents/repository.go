package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

// Repository persists document metadata.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Document, int, error)
	Get(ctx context.Context, id int64) (Document, error)
	Create(ctx context.Context, d Document) (Document, error)
	Delete(ctx context.Context, id int64) (Document, error)
	OwnerExists(ctx context.Context, ownerType string, ownerID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const columns = `id, owner_type, owner_id, file_name, content_type, size_bytes, storage_key, uploaded_by, created_at`

const listWhere = ` WHERE ($1 = '' OR owner_type = $1) AND ($2 = 0 OR owner_id = $2)`

func (r *repository) List(ctx context.Context, f ListFilters) ([]Document, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+listWhere, f.OwnerType, f.OwnerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * f.Limit
	}
	rows, err := r.db.Query(ctx, `SELECT `+columns+` FROM documents`+listWhere+
		` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`, f.OwnerType, f.OwnerID, f.Limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Document, error) {
	return one(scanDocument(r.db.QueryRow(ctx, `SELECT `+columns+` FROM documents WHERE id = $1`, id)))
}

func (r *repository) Create(ctx context.Context, d Document) (Document, error) {
	return one(scanDocument(r.db.QueryRow(ctx, `
		INSERT INTO documents (owner_type, owner_id, file_name, content_type, size_bytes, storage_key, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+columns,
		d.OwnerType, d.OwnerID, d.FileName, d.ContentType, d.SizeBytes, d.StorageKey, d.UploadedBy)))
}

// Delete removes the row and returns it so the caller can drop the object.
func (r *repository) Delete(ctx context.Context, id int64) (Document, error) {
	return one(scanDocument(r.db.QueryRow(ctx, `DELETE FROM documents WHERE id = $1 RETURNING `+columns, id)))
}

func (r *repository) OwnerExists(ctx context.Context, ownerType string, ownerID int64) (bool, error) {
	table, ok := ownerTables[ownerType]
	if !ok {
		return false, fmt.Errorf("documents: unknown owner type %q", ownerType)
	}
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, ownerID).Scan(&exists)
	return exists, err
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.OwnerType, &d.OwnerID, &d.FileName, &d.ContentType, &d.SizeBytes,
		&d.StorageKey, &d.UploadedBy, &d.CreatedAt)
	return d, err
}

func one(d Document, err error) (Document, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, httpx.ErrNotFound
	}
	if err != nil {
		return Document{}, httpx.MapPgError(err)
	}
	return d, nil
}
