package database

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetops/fleet-management-backend/internal/domain/account"
	"github.com/fleetops/fleet-management-backend/internal/domain/errors"
)

// UserRepository implements account.Repository over PostgreSQL.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		nullString(user.FirstName),
		nullString(user.LastName),
		string(user.Role),
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errors.ErrDuplicateEmail
		}
		return errors.NewStorageError("create user", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	user, err := r.scanUser(r.db.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.NewStorageError("get user", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	user, err := r.scanUser(r.db.QueryRow(ctx, userSelect+` WHERE email = $1`, email))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.NewStorageError("get user by email", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return errors.NewStorageError("update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrUserNotFound
	}
	return nil
}

const userSelect = `
		SELECT id, email, password_hash, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       role, created_at, last_login_at
		FROM users`

func (r *UserRepository) scanUser(row pgx.Row) (*account.User, error) {
	var user account.User
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FirstName,
		&user.LastName, &role, &user.CreatedAt, &user.LastLoginAt); err != nil {
		return nil, err
	}
	user.Role = account.Role(role)
	return &user, nil
}
