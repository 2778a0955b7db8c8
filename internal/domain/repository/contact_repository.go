package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
)

// ContactStore is the only way to reach contacts. It hands out handles bound
// to a single owner, so there is no query path without the owner predicate.
type ContactStore interface {
	ForOwner(ownerID string) OwnedContacts
}

// OwnedContacts operates on the contacts of exactly one owner. Every method
// conjoins owner == OwnerID() with its own predicate; rows of other owners
// behave as if they did not exist (ErrNotFound).
type OwnedContacts interface {
	OwnerID() string
	List(ctx context.Context, skip, limit int) ([]entity.Contact, error)
	Get(ctx context.Context, id string) (*entity.Contact, error)
	Create(ctx context.Context, in entity.ContactInput) (*entity.Contact, error)
	Update(ctx context.Context, id string, in entity.ContactInput) (*entity.Contact, error)
	Delete(ctx context.Context, id string) (*entity.Contact, error)
	Search(ctx context.Context, f entity.ContactFilter) ([]entity.Contact, error)
	// BirthdaysBetween matches on month and day only, wrapping across the
	// new year when to falls before from.
	BirthdaysBetween(ctx context.Context, from, to time.Time) ([]entity.Contact, error)
}

// ContactIndex is an optional full-text index of contacts. Searches always
// filter on the owner.
type ContactIndex interface {
	Index(ctx context.Context, c *entity.Contact) error
	Remove(ctx context.Context, ownerID, contactID string) error
	Search(ctx context.Context, ownerID, query string, size int) ([]entity.Contact, error)
}
