package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

const TokenTypeBearer = "bearer"

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
	TokenType          string
}

type SessionConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RevokeOnReuse clears the stored refresh token when a stale one is
	// presented, logging the user out everywhere.
	RevokeOnReuse bool
}

// SessionService issues and rotates access/refresh token pairs. The user row
// holds the single valid refresh token; writing a new one revokes the old.
type SessionService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	cfg    SessionConfig

	dummyOnce sync.Once
	dummyHash string
}

func NewSessionService(r repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger, cfg SessionConfig) *SessionService {
	return &SessionService{Repo: r, JWT: jwt, Logger: logger, cfg: cfg}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// burnHash spends the same bcrypt work as a real comparison so that unknown
// emails are not distinguishable by latency.
func (s *SessionService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = helpers.HashPassword("dummy-password-for-timing")
	})
	_ = helpers.CompareHashAndPassword(s.dummyHash, password)
}

// Login checks credentials and confirmation, then issues a fresh pair and
// stores its refresh token, replacing any previous one.
func (s *SessionService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.burnHash(password)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !u.Confirmed {
		return TokenPair{}, ErrNotConfirmed
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Repo.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("store refresh token failed")
		}
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Refresh exchanges the presented refresh token for a new pair. The swap is
// a compare-and-swap against the stored token, so a token can be redeemed
// once; a second redemption gets ErrStaleToken.
func (s *SessionService) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	claims, err := s.JWT.DecodeAs(presented, helpers.TokenRefresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	u, err := s.Repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(presented)) != 1 {
		return TokenPair{}, s.staleToken(ctx, u)
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Repo.SwapRefreshToken(ctx, u.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, repo.ErrRefreshTokenMismatch) {
			return TokenPair{}, s.staleToken(ctx, u)
		}
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return pair, nil
}

// Logout revokes the outstanding refresh token. Access tokens stay valid
// until they expire.
func (s *SessionService) Logout(ctx context.Context, identity *entity.User) error {
	if identity == nil || identity.ID == "" {
		return ErrUnauthorized
	}
	if err := s.Repo.SetRefreshToken(ctx, identity.ID, ""); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (s *SessionService) staleToken(ctx context.Context, u *entity.User) error {
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"user_id": u.ID,
			"revoke":  s.cfg.RevokeOnReuse,
		}).Warn("stale refresh token presented")
	}
	if s.cfg.RevokeOnReuse {
		if err := s.Repo.SetRefreshToken(ctx, u.ID, ""); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("revoke refresh token failed")
		}
	}
	return ErrStaleToken
}

func (s *SessionService) issuePair(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.Issue(u.Email, helpers.TokenAccess, s.cfg.AccessTTL)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.Issue(u.Email, helpers.TokenRefresh, s.cfg.RefreshTTL)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
		TokenType:          TokenTypeBearer,
	}, nil
}
