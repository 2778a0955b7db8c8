package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

// Mailer delivers confirmation tokens. Delivery, retries and templates are
// its business.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, username, token string) error
}

type ConfirmOutcome int

const (
	OutcomeConfirmed ConfirmOutcome = iota + 1
	OutcomeAlreadyConfirmed
	OutcomeConfirmationSent
)

// ConfirmationService issues and redeems email-confirmation tokens. Tokens
// are stateless; redeeming one only ever flips the confirmed flag to true.
type ConfirmationService struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Mailer Mailer
	Logger *logrus.Logger
	TTL    time.Duration
}

func NewConfirmationService(r repo.UserRepository, jwt *helpers.JWTManager, mailer Mailer, logger *logrus.Logger, ttl time.Duration) *ConfirmationService {
	return &ConfirmationService{Repo: r, JWT: jwt, Mailer: mailer, Logger: logger, TTL: ttl}
}

func (s *ConfirmationService) Issue(email string) (string, error) {
	tok, _, err := s.JWT.Issue(normalizeEmail(email), helpers.TokenEmailConfirmation, s.TTL)
	return tok, err
}

// Confirm redeems a token. Every token or lookup failure is ErrVerification;
// confirming an already confirmed account is a no-op.
func (s *ConfirmationService) Confirm(ctx context.Context, token string) (ConfirmOutcome, error) {
	claims, err := s.JWT.DecodeAs(token, helpers.TokenEmailConfirmation)
	if err != nil {
		return 0, ErrVerification
	}
	u, err := s.Repo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrVerification
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	if u.Confirmed {
		return OutcomeAlreadyConfirmed, nil
	}
	changed, err := s.Repo.MarkConfirmed(ctx, u.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrVerification
		}
		return 0, fmt.Errorf("confirm user: %w", err)
	}
	if !changed {
		return OutcomeAlreadyConfirmed, nil
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("email confirmed")
	}
	return OutcomeConfirmed, nil
}

// Request re-sends a confirmation email unless the account is already
// confirmed.
func (s *ConfirmationService) Request(ctx context.Context, email string) (ConfirmOutcome, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrVerification
		}
		return 0, fmt.Errorf("load user: %w", err)
	}
	if u.Confirmed {
		return OutcomeAlreadyConfirmed, nil
	}
	if err := s.Send(ctx, u); err != nil {
		return 0, err
	}
	return OutcomeConfirmationSent, nil
}

// Send issues a token for u and hands it to the mailer.
func (s *ConfirmationService) Send(ctx context.Context, u *entity.User) error {
	if s.Mailer == nil {
		return fmt.Errorf("%w: mailer not configured", ErrUnavailable)
	}
	tok, err := s.Issue(u.Email)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}
	if err := s.Mailer.SendConfirmation(ctx, u.Email, u.Username, tok); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("send confirmation failed")
		}
		return fmt.Errorf("send confirmation: %w", err)
	}
	return nil
}
