package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/storefront/storefront-api/internal/core/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, username, full_name, email, is_active, scopes, hashed_password, created_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	scopes, err := json.Marshal(nonNil(user.Scopes))
	if err != nil {
		return nil, fmt.Errorf("encode scopes: %w", err)
	}

	query := `INSERT INTO users (username, full_name, email, is_active, scopes, hashed_password, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`

	created := user.Clone()
	err = r.db.QueryRowContext(ctx, query,
		user.Username, user.FullName, user.Email, user.IsActive, string(scopes), user.HashedPassword, user.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limitArg(filter.Limit), filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// Update applies only the fields present in the patch; COALESCE keeps the
// stored value for every NULL argument.
func (r *UserRepository) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, bool, error) {
	var scopes any
	if patch.Scopes != nil {
		b, err := json.Marshal(nonNil(*patch.Scopes))
		if err != nil {
			return nil, false, fmt.Errorf("encode scopes: %w", err)
		}
		scopes = string(b)
	}

	query := `UPDATE users SET
		 full_name = COALESCE($2, full_name),
		 email = COALESCE($3, email),
		 is_active = COALESCE($4, is_active),
		 scopes = COALESCE($5::jsonb, scopes)
		 WHERE id = $1
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, patch.FullName, patch.Email, patch.IsActive, scopes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	return user, true, nil
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u      domain.User
		scopes []byte
	)
	if err := s.Scan(&u.ID, &u.Username, &u.FullName, &u.Email, &u.IsActive, &scopes, &u.HashedPassword, &u.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scopes, &u.Scopes); err != nil {
		return nil, fmt.Errorf("decode scopes: %w", err)
	}
	return &u, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
