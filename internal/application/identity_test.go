package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "secret123", true)

	pair, err := f.sessions.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	u, err := f.identity.Resolve(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)

	_, err = f.identity.Resolve(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.identity.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	orphan, _, err := f.jwt.Issue("gone@example.com", helpers.TokenAccess, time.Minute)
	require.NoError(t, err)
	_, err = f.identity.Resolve(ctx, orphan)
	assert.ErrorIs(t, err, ErrUnauthorized)

	other, err := helpers.NewJWTManager("another-secret")
	require.NoError(t, err)
	forged, _, err := other.Issue("ann@example.com", helpers.TokenAccess, time.Minute)
	require.NoError(t, err)
	_, err = f.identity.Resolve(ctx, forged)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
