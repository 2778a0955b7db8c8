package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
	"github.com/oksasatya/go-contacts-api/pkg/helpers"
)

// AvatarStorage stores an avatar object and returns its public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type Service struct {
	Repo          repo.UserRepository
	Confirmations *ConfirmationService
	Avatars       AvatarStorage
	Logger        *logrus.Logger
}

func NewService(r repo.UserRepository, confirmations *ConfirmationService, avatars AvatarStorage, logger *logrus.Logger) *Service {
	return &Service{Repo: r, Confirmations: confirmations, Avatars: avatars, Logger: logger}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates an unconfirmed account and sends the confirmation email.
// A mail failure does not undo the account; the user can request a resend.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	u := &entity.User{
		ID:        uuid.NewString(),
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Password:  hash,
		AvatarURL: helpers.GravatarURL(email),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user signed up")
	}

	if s.Confirmations != nil {
		if err := s.Confirmations.Send(ctx, u); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("confirmation email not sent")
		}
	}
	return u, nil
}

func (s *Service) GetProfile(ctx context.Context, identity *entity.User) (*entity.User, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.Repo.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UploadAvatar stores the image under avatars/<user id>/ and points the
// profile at it.
func (s *Service) UploadAvatar(ctx context.Context, identity *entity.User, r io.Reader, filename, contentType string) (*entity.User, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthorized
	}
	if s.Avatars == nil {
		return nil, fmt.Errorf("%w: avatar storage not configured", ErrUnavailable)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: avatar must be an image", ErrInvalidInput)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", identity.ID, uuid.NewString()+ext))
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", identity.ID).Error("avatar upload failed")
		}
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	u, err := s.Repo.UpdateAvatar(ctx, identity.ID, url)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
