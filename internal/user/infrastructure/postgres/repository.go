package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dongju2-lee/sample-micro-app/internal/user/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              BIGSERIAL PRIMARY KEY,
    username        TEXT NOT NULL UNIQUE,
    email           TEXT NOT NULL,
    hashed_password TEXT NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, hashed_password, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Username, u.Email, u.HashedPassword, u.Active)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, u.Username)
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *Repository) ByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users WHERE username = $1`, username))
}

func (r *Repository) ByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, username, email, hashed_password, is_active, created_at
		FROM users WHERE id = $1`, id))
}

func (r *Repository) scanOne(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
