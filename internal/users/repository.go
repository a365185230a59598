package users

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
	"email":      "u.email",
	"name":       "u.name",
	"status":     "u.status",
	"created_at": "u.created_at",
}

const userSelect = `
SELECT u.id, u.email, u.name, u.status,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles,
       u.created_at, u.updated_at
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id`

const listWhere = `
WHERE u.deleted_at IS NULL
  AND ($1 = '' OR u.email ILIKE '%' || $1 || '%' OR u.name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR u.status = $2)`

// List returns one page of live users.
func (r *Repository) List(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users u`+listWhere, filters.Search, filters.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := sortColumns[filters.SortBy]
	if !ok {
		order = "u.id"
	}
	dir := "ASC"
	if filters.SortDir == "desc" {
		dir = "DESC"
	}
	rows, err := r.pool.Query(ctx, userSelect+listWhere+`
		GROUP BY u.id
		ORDER BY `+order+` `+dir+`, u.id
		LIMIT $3 OFFSET $4`, filters.Search, filters.Status, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Get fetches a live user with role names.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id = $1 AND u.deleted_at IS NULL GROUP BY u.id`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	return u, err
}

// Create inserts a user with an already hashed password.
func (r *Repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, status) VALUES ($1, $2, $3, $4)
		RETURNING id`, u.Email, u.Name, passwordHash, u.Status).Scan(&id)
	if err != nil {
		return User{}, httpx.MapPgError(err)
	}
	return r.Get(ctx, id)
}

// Update writes the profile fields and, when passwordHash is non-nil, the
// new password hash.
func (r *Repository) Update(ctx context.Context, id int64, u User, passwordHash *string) (User, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, status = $3,
		    password_hash = COALESCE($4, password_hash), updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL`, u.Email, u.Name, u.Status, passwordHash, id)
	if err != nil {
		return User{}, httpx.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

// SoftDelete disables the user, stamps deleted_at and drops role assignments
// and login sessions.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET status = 'disabled', deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("users: clear roles: %w", err)
		}
		_, err = tx.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, id)
		return err
	})
}

// ReplaceRoles swaps the user's role set inside one transaction.
func (r *Repository) ReplaceRoles(ctx context.Context, id int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("users: clear roles: %w", err)
		}
		if len(roleIDs) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, unnest($2::bigint[])`, id, roleIDs)
		return httpx.MapPgError(err)
	})
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Status, &u.Roles, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
