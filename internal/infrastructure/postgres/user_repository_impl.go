package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

const userColumns = `id, username, email, password_hash, COALESCE(refresh_token, ''), avatar_url, confirmed, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.RefreshToken,
		&u.AvatarURL, &u.Confirmed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, avatar_url, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, u.ID, u.Username, u.Email, u.Password, u.AvatarURL, u.Confirmed)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = now()
		WHERE id = $1
	`, userID, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SwapRefreshToken relies on the row lock taken by UPDATE: a concurrent
// swap blocks, then re-evaluates the WHERE clause against the new value
// and matches nothing.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, userID, expected, next string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET refresh_token = NULLIF($3, ''), updated_at = now()
		WHERE id = $1 AND refresh_token IS NOT DISTINCT FROM NULLIF($2, '')
	`, userID, expected, next)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrRefreshTokenMismatch
	}
	return nil
}

func (r *UserRepository) MarkConfirmed(ctx context.Context, email string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET confirmed = TRUE, updated_at = now()
		WHERE email = $1 AND NOT confirmed
	`, email)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, url string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET avatar_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, userID, url))
}
