package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrRefreshTokenMismatch is returned by SwapRefreshToken when the stored
	// token is not the expected one (already rotated, revoked or never issued).
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetRefreshToken overwrites the stored refresh token unconditionally.
	// An empty token clears it.
	SetRefreshToken(ctx context.Context, userID, token string) error

	// SwapRefreshToken replaces expected with next as one atomic
	// compare-and-swap. Of two concurrent swaps from the same expected value
	// exactly one succeeds; the other gets ErrRefreshTokenMismatch.
	SwapRefreshToken(ctx context.Context, userID, expected, next string) error

	// MarkConfirmed sets the confirmation flag. It reports false when the
	// account was already confirmed and nothing changed.
	MarkConfirmed(ctx context.Context, email string) (bool, error)

	UpdateAvatar(ctx context.Context, userID, url string) (*entity.User, error)
}
