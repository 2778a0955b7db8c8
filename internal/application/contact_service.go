package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

const (
	DefaultListLimit    = 10
	MaxListLimit        = 100
	DefaultBirthdayDays = 7
	MaxBirthdayDays     = 366
)

// ContactService is the owner-scoped entry point for contacts. Every method
// takes the resolved identity and works on a store handle bound to it.
type ContactService struct {
	Store  repo.ContactStore
	Index  repo.ContactIndex
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewContactService(store repo.ContactStore, index repo.ContactIndex, logger *logrus.Logger) *ContactService {
	return &ContactService{Store: store, Index: index, Logger: logger, Now: time.Now}
}

func (s *ContactService) scope(identity *entity.User) (repo.OwnedContacts, error) {
	if identity == nil || identity.ID == "" {
		return nil, ErrUnauthorized
	}
	return s.Store.ForOwner(identity.ID), nil
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *ContactService) List(ctx context.Context, identity *entity.User, skip, limit int) ([]entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	skip, limit = ClampPage(skip, limit)
	return owned.List(ctx, skip, limit)
}

// ClampPage applies the list defaults and bounds to a requested page.
func ClampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return skip, limit
}

func (s *ContactService) Get(ctx context.Context, identity *entity.User, id string) (*entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	c, err := owned.Get(ctx, id)
	return c, notFound(err)
}

// Create stamps the owner from identity; there is no way to pass another.
func (s *ContactService) Create(ctx context.Context, identity *entity.User, in entity.ContactInput) (*entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	c, err := owned.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.index(ctx, c)
	return c, nil
}

func (s *ContactService) Update(ctx context.Context, identity *entity.User, id string, in entity.ContactInput) (*entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	c, err := owned.Update(ctx, id, in)
	if err != nil {
		return nil, notFound(err)
	}
	s.index(ctx, c)
	return c, nil
}

func (s *ContactService) Delete(ctx context.Context, identity *entity.User, id string) (*entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	c, err := owned.Delete(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if s.Index != nil {
		if iErr := s.Index.Remove(ctx, c.OwnerID, c.ID); iErr != nil && s.Logger != nil {
			s.Logger.WithError(iErr).WithField("contact_id", c.ID).Warn("contact unindex failed")
		}
	}
	return c, nil
}

// Search returns every contact of identity matching all given filters.
func (s *ContactService) Search(ctx context.Context, identity *entity.User, f entity.ContactFilter) ([]entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	if f.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one of name, surname or email is required", ErrInvalidInput)
	}
	return owned.Search(ctx, f)
}

// Birthdays lists contacts whose birthday falls within the next days days,
// today included.
func (s *ContactService) Birthdays(ctx context.Context, identity *entity.User, days int) ([]entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultBirthdayDays
	}
	if days > MaxBirthdayDays {
		days = MaxBirthdayDays
	}
	now := s.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return owned.BirthdaysBetween(ctx, from, from.AddDate(0, 0, days))
}

// FullText queries the search index and re-reads each hit through the
// owner-scoped store, so a stale or foreign index entry never leaks.
func (s *ContactService) FullText(ctx context.Context, identity *entity.User, query string, size int) ([]entity.Contact, error) {
	owned, err := s.scope(identity)
	if err != nil {
		return nil, err
	}
	if s.Index == nil {
		return nil, fmt.Errorf("%w: search index not configured", ErrUnavailable)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	hits, err := s.Index.Search(ctx, owned.OwnerID(), query, size)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	out := make([]entity.Contact, 0, len(hits))
	for _, h := range hits {
		c, err := owned.Get(ctx, h.ID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *ContactService) index(ctx context.Context, c *entity.Contact) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, c); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("contact_id", c.ID).Warn("contact index failed")
	}
}
