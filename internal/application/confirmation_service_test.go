package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "secret123", false)

	tok := f.mail.token("ann@example.com")
	require.NotEmpty(t, tok)

	out, err := f.confirm.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, out)

	// same token again is a no-op
	out, err = f.confirm.Confirm(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyConfirmed, out)

	u, err := f.users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.True(t, u.Confirmed)
}

func TestConfirm_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "secret123", true)

	pair, err := f.sessions.Login(ctx, "ann@example.com", "secret123")
	require.NoError(t, err)

	ghost, err := f.confirm.Issue("ghost@example.com")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "abc"},
		{"access token", pair.AccessToken},
		{"refresh token", pair.RefreshToken},
		{"unknown user", ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.confirm.Confirm(ctx, tt.token)
			assert.ErrorIs(t, err, ErrVerification)
		})
	}
}

func TestConfirm_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "secret123", false)

	f.clock.Advance(25 * time.Hour)
	_, err := f.confirm.Confirm(ctx, f.mail.token("ann@example.com"))
	assert.ErrorIs(t, err, ErrVerification)
}

func TestConfirmationToken_NotAnAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "ann@example.com", "secret123", true)

	tok, err := f.confirm.Issue("ann@example.com")
	require.NoError(t, err)
	_, err = f.identity.Resolve(ctx, tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "done@example.com", "secret123", true)
	f.signup(t, "pending@example.com", "secret123", false)

	out, err := f.confirm.Request(ctx, "done@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyConfirmed, out)

	first := f.mail.token("pending@example.com")
	f.clock.Advance(time.Second)
	out, err = f.confirm.Request(ctx, "Pending@Example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmationSent, out)
	assert.NotEqual(t, first, f.mail.token("pending@example.com"))

	_, err = f.confirm.Request(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrVerification)
}

func TestRequest_MailerFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "pending@example.com", "secret123", false)

	f.mail.err = errors.New("queue down")
	_, err := f.confirm.Request(ctx, "pending@example.com")
	assert.Error(t, err)

	f.confirm.Mailer = nil
	_, err = f.confirm.Request(ctx, "pending@example.com")
	assert.ErrorIs(t, err, ErrUnavailable)
}
