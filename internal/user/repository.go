// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/user-service/internal/core"
)

var (
	ErrUsernameTaken     = fmt.Errorf("username: %w", core.ErrDuplicateKey)
	ErrEmailTaken        = fmt.Errorf("email: %w", core.ErrDuplicateKey)
	ErrUnknownPermission = fmt.Errorf("unknown permission: %w", core.ErrInvalidInput)
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

type Repository interface {
	Create(ctx context.Context, user *User, permissionIDs []int64) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context, params ListUsersParams) ([]User, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	CountPermissions(ctx context.Context, ids []int64) (int, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `
		u.id, u.username, u.name, u.surname, u.email, u.password_hash, u.created_at,
		ARRAY(
			SELECT p.name
			FROM user_permissions up
			JOIN permissions p ON p.id = up.permission_id
			WHERE up.user_id = u.id
			ORDER BY p.id
		) AS permissions`

// Create inserts the user and its permission links in one transaction.
// Unique violations surface as ErrUsernameTaken or ErrEmailTaken so a lost
// check-then-insert race is reported like an ordinary conflict.
func (r *repository) Create(
	ctx context.Context,
	user *User,
	permissionIDs []int64,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (username, name, surname, email, password_hash)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`

		if err := tx.GetContext(ctx, user, query,
			user.Username,
			user.Name,
			user.Surname,
			user.Email,
			user.PasswordHash,
		); err != nil {
			return translateWriteError(err)
		}

		for _, permissionID := range permissionIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)`,
				user.ID,
				permissionID,
			); err != nil {
				return translateWriteError(err)
			}
		}

		names, err := permissionNames(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		user.Permissions = names

		return nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.getOne(ctx, "get user", "u.id = $1", id)
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return r.getOne(ctx, "get user by username", "u.username = $1", username)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email", "u.email = $1", email)
}

func (r *repository) getOne(
	ctx context.Context,
	op, condition string,
	arg any,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE ` + condition

	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

// List applies each non-empty filter as a case-insensitive substring match,
// ANDed together, ordered by id.
func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	for _, f := range []struct {
		column string
		value  string
	}{
		{"u.name", params.Name},
		{"u.surname", params.Surname},
		{"u.email", params.Email},
	} {
		if f.value == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", f.column, argIdx))
		args = append(args, "%"+escapeLike(f.value)+"%")
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s
		FROM users u
		%s
		ORDER BY u.id ASC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Limit, params.Skip)

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func permissionNames(
	ctx context.Context,
	db core.DBTX,
	userID int64,
) ([]string, error) {
	query := `
		SELECT p.name
		FROM user_permissions up
		JOIN permissions p ON p.id = up.permission_id
		WHERE up.user_id = $1
		ORDER BY p.id`

	names := []string{}
	if err := db.SelectContext(ctx, &names, query, userID); err != nil {
		return nil, fmt.Errorf("permission names: %w", err)
	}

	return names, nil
}

func (r *repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := r.db.SelectContext(ctx, &perms,
		`SELECT id, name FROM permissions ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return perms, nil
}

func (r *repository) CountPermissions(
	ctx context.Context,
	ids []int64,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`SELECT COUNT(*) FROM permissions WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("count permissions: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("count permissions: %w", err)
	}

	return count, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return ErrUsernameTaken
		case emailConstraint:
			return ErrEmailTaken
		}
	}
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrUnknownPermission
	}
	return core.TranslatePgError(err)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
