package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

// IdentityResolver turns a bearer access token into the acting user.
// Protected operations receive the returned user as an explicit argument.
type IdentityResolver struct {
	Repo repo.UserRepository
	JWT  *helpers.JWTManager
}

func NewIdentityResolver(r repo.UserRepository, jwt *helpers.JWTManager) *IdentityResolver {
	return &IdentityResolver{Repo: r, JWT: jwt}
}

// Resolve accepts only access tokens of an existing user. It does not look
// at the confirmed flag: access tokens are only issued to confirmed users.
func (r *IdentityResolver) Resolve(ctx context.Context, bearer string) (*entity.User, error) {
	if bearer == "" {
		return nil, ErrUnauthorized
	}
	claims, err := r.JWT.DecodeAs(bearer, helpers.TokenAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	u, err := r.Repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}
