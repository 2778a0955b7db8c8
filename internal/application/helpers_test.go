package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contacts-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

type outbox struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (o *outbox) SendConfirmation(_ context.Context, email, _ string, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	if o.tokens == nil {
		o.tokens = map[string]string{}
	}
	o.tokens[email] = token
	return nil
}

func (o *outbox) token(email string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tokens[email]
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	users    *memory.UserRepository
	jwt      *helpers.JWTManager
	clock    *clock
	mail     *outbox
	logs     *test.Hook
	sessions *SessionService
	confirm  *ConfirmationService
	accounts *Service
	identity *IdentityResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &clock{t: time.Now().UTC()}
	jwt, err := helpers.NewJWTManager("test-secret", helpers.WithClock(clk.Now))
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	users := memory.NewUserRepository()
	mail := &outbox{}
	confirm := NewConfirmationService(users, jwt, mail, logger, 24*time.Hour)
	return &fixture{
		users:    users,
		jwt:      jwt,
		clock:    clk,
		mail:     mail,
		logs:     hook,
		sessions: NewSessionService(users, jwt, logger, SessionConfig{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}),
		confirm:  confirm,
		accounts: NewService(users, confirm, nil, logger),
		identity: NewIdentityResolver(users, jwt),
	}
}

// signup registers and, when confirmed is set, confirms an account.
func (f *fixture) signup(t *testing.T, email, password string, confirmed bool) {
	t.Helper()
	ctx := context.Background()
	_, err := f.accounts.Signup(ctx, SignupInput{Username: "user1", Email: email, Password: password})
	require.NoError(t, err)
	if confirmed {
		out, err := f.confirm.Confirm(ctx, f.mail.token(normalizeEmail(email)))
		require.NoError(t, err)
		require.Equal(t, OutcomeConfirmed, out)
	}
}
