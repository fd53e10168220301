package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

type UserStore struct {
	pool   *pgxpool.Pool
	logger *logger_i.Logger
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool:   pool,
		logger: logger_i.NewLogger("UserStore"),
	}
}

const userColumns = `id, username, COALESCE(fullname, ''), COALESCE(email, ''), password_hash, role, email_verified, subscription_end, created_at`

func (s *UserStore) CreateUser(ctx context.Context, u userModel.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, fullname, email, password_hash, role, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.Id, u.Username, u.Fullname, u.Email, u.PasswordHash, u.Role, u.EmailVerified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("username or email: %w", appError.ErrDuplicate)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByLogin resolves a user by username or email, whichever matches.
func (s *UserStore) GetByLogin(ctx context.Context, login string) (userModel.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`, login)
	return s.scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (userModel.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanUser(row)
}

func (s *UserStore) scanUser(row pgx.Row) (userModel.User, error) {
	var u userModel.User
	err := row.Scan(&u.Id, &u.Username, &u.Fullname, &u.Email, &u.PasswordHash, &u.Role,
		&u.EmailVerified, &u.SubscriptionEnd, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userModel.User{}, appError.ErrNotFound
		}
		return userModel.User{}, fmt.Errorf("scanning user row: %w", err)
	}
	return u, nil
}
