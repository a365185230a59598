package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/platform/db"
	"github.com/eapdesk/eapdesk/internal/platform/httpx"
	"github.com/eapdesk/eapdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var sortColumns = map[string]string{
	"name":       "r.name",
	"created_at": "r.created_at",
}

// roleSelect aggregates permission names per role; roles without grants get
// an empty array.
const roleSelect = `
SELECT r.id, r.name, r.description,
       COALESCE(array_agg(p.name ORDER BY p.name) FILTER (WHERE p.name IS NOT NULL), '{}') AS permissions,
       r.created_at, r.updated_at
FROM roles r
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id`

// List returns one page of roles and the total match count.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]Role, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM roles WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`, filters.Search,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := sortColumns[filters.SortBy]
	if !ok {
		order = "r.name"
	}
	dir := "ASC"
	if filters.SortDir == "desc" {
		dir = "DESC"
	}
	rows, err := r.pool.Query(ctx, roleSelect+`
		WHERE $1 = '' OR r.name ILIKE '%' || $1 || '%'
		GROUP BY r.id
		ORDER BY `+order+` `+dir+`, r.id
		LIMIT $2 OFFSET $3`, filters.Search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, 0, err
		}
		roles = append(roles, role)
	}
	return roles, total, rows.Err()
}

// Get fetches a role with its permission names.
func (r *Repository) Get(ctx context.Context, id int64) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, roleSelect+` WHERE r.id = $1 GROUP BY r.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, httpx.ErrNotFound
	}
	return role, err
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, name, description string) (Role, error) {
	role := Role{Permissions: []string{}}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description) VALUES ($1, $2)
		RETURNING id, name, description, created_at, updated_at`, name, description,
	).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return Role{}, httpx.MapPgError(err)
	}
	return role, nil
}

// Update renames or re-describes a role.
func (r *Repository) Update(ctx context.Context, id int64, name, description string) (Role, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`, name, description, id)
	if err != nil {
		return Role{}, httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return Role{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a role together with its assignments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// ReplacePermissions swaps the role's permission set inside one transaction.
func (r *Repository) ReplacePermissions(ctx context.Context, id int64, permissionIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return fmt.Errorf("roles: clear permissions: %w", err)
		}
		if len(permissionIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, unnest($2::bigint[])`, id, permissionIDs)
		return httpx.MapPgError(err)
	})
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
