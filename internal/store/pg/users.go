// Package pg provides the Postgres UserStore backed by a pgx pool.
package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/burnick/demoapp-sub000/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

// New connects the pool and verifies the connection.
func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool for metrics collectors.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

const userColumns = `id, email, name, avatar_url, email_verified, password_hash, provider, provider_user_id, created_at, updated_at`

func scanUser(row pgx.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.EmailVerified,
		&u.PasswordHash, &u.Provider, &u.ProviderUserID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) Create(ctx context.Context, u *store.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	row := s.pool.QueryRow(ctx, `
        INSERT INTO app_user (id, email, name, avatar_url, email_verified, password_hash, provider, provider_user_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`,
		u.ID, u.Email, u.Name, u.AvatarURL, u.EmailVerified, u.PasswordHash, u.Provider, u.ProviderUserID,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*store.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*store.User, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM app_user`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, `
        SELECT `+userColumns+`
          FROM app_user
         ORDER BY created_at, id
         LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []*store.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *Store) Update(ctx context.Context, u *store.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	row := s.pool.QueryRow(ctx, `
        UPDATE app_user
           SET email = $2, name = $3, avatar_url = $4, email_verified = $5,
               password_hash = $6, updated_at = now()
         WHERE id = $1
        RETURNING updated_at`,
		u.ID, u.Email, u.Name, u.AvatarURL, u.EmailVerified, u.PasswordHash,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
