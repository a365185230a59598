package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eapdesk/eapdesk/internal/platform/httpx"
)

// Repository provides PostgreSQL backed access to the permission catalogue and
// to role grants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleGrantsSQL = `
SELECT r.name, p.name
FROM user_roles ur
JOIN users u ON u.id = ur.user_id AND u.status = 'active' AND u.deleted_at IS NULL
JOIN roles r ON r.id = ur.role_id
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id
WHERE ur.user_id = $1
ORDER BY r.name, p.name`

// RoleGrantsForUser returns every role held by userID with the role's
// permissions. Users that are disabled or deleted hold no grants.
func (r *Repository) RoleGrantsForUser(ctx context.Context, userID int64) ([]RoleGrant, error) {
	rows, err := r.pool.Query(ctx, roleGrantsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("rbac: query grants: %w", err)
	}
	defer rows.Close()

	var pairs []grantRow
	for rows.Next() {
		var row grantRow
		if err := rows.Scan(&row.role, &row.perm); err != nil {
			return nil, fmt.Errorf("rbac: scan grant: %w", err)
		}
		pairs = append(pairs, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: iterate grants: %w", err)
	}
	return foldGrants(pairs), nil
}

// grantRow is one (role, permission) row of the grants join. perm is nil for
// a role without permissions.
type grantRow struct {
	role string
	perm *string
}

// foldGrants collapses join rows into one RoleGrant per role, keeping first
// appearance order. A role without permissions gets an empty, non-nil slice.
func foldGrants(rows []grantRow) []RoleGrant {
	var grants []RoleGrant
	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.role]
		if !ok {
			grants = append(grants, RoleGrant{Role: row.role, Permissions: []string{}})
			i = len(grants) - 1
			index[row.role] = i
		}
		if row.perm != nil {
			grants[i].Permissions = append(grants[i].Permissions, *row.perm)
		}
	}
	return grants
}

// ListPermissions returns the permission catalogue ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	perms := []Permission{}
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// GetPermission fetches a permission by ID.
func (r *Repository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM permissions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return Permission{}, httpx.ErrNotFound
	}
	return p, err
}

// CreatePermission inserts a permission.
func (r *Repository) CreatePermission(ctx context.Context, name, description string) (Permission, error) {
	var p Permission
	err := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (name, description) VALUES ($1, $2) RETURNING id, name, description`,
		name, description,
	).Scan(&p.ID, &p.Name, &p.Description)
	if err != nil {
		return Permission{}, httpx.MapPgError(err)
	}
	return p, nil
}

// DeletePermission removes a permission and its role assignments.
func (r *Repository) DeletePermission(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
