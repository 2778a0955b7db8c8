package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	repo "github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

// ContactStore keeps contacts in process memory, keyed by id.
type ContactStore struct {
	mu   sync.RWMutex
	rows map[string]*entity.Contact
	seq  []string // insertion order
	now  func() time.Time
}

func NewContactStore() *ContactStore {
	return &ContactStore{rows: map[string]*entity.Contact{}, now: time.Now}
}

func (s *ContactStore) ForOwner(ownerID string) repo.OwnedContacts {
	return &ownedContacts{s: s, owner: ownerID}
}

type ownedContacts struct {
	s     *ContactStore
	owner string
}

func (o *ownedContacts) OwnerID() string { return o.owner }

// lookup must be called with the lock held.
func (o *ownedContacts) lookup(id string) (*entity.Contact, bool) {
	c, ok := o.s.rows[id]
	if !ok || c.OwnerID != o.owner {
		return nil, false
	}
	return c, true
}

// filter must be called with the lock held.
func (o *ownedContacts) filter(match func(*entity.Contact) bool) []entity.Contact {
	out := make([]entity.Contact, 0)
	for _, id := range o.s.seq {
		c, ok := o.lookup(id)
		if ok && match(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (o *ownedContacts) List(_ context.Context, skip, limit int) ([]entity.Contact, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	all := o.filter(func(*entity.Contact) bool { return true })
	if skip >= len(all) {
		return []entity.Contact{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (o *ownedContacts) Get(_ context.Context, id string) (*entity.Contact, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	c, ok := o.lookup(id)
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (o *ownedContacts) Create(_ context.Context, in entity.ContactInput) (*entity.Contact, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	now := o.s.now().UTC()
	c := &entity.Contact{ID: uuid.NewString(), OwnerID: o.owner, CreatedAt: now, UpdatedAt: now}
	c.Apply(in)
	o.s.rows[c.ID] = c
	o.s.seq = append(o.s.seq, c.ID)
	cp := *c
	return &cp, nil
}

func (o *ownedContacts) Update(_ context.Context, id string, in entity.ContactInput) (*entity.Contact, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	c, ok := o.lookup(id)
	if !ok {
		return nil, repo.ErrNotFound
	}
	c.Apply(in)
	c.UpdatedAt = o.s.now().UTC()
	cp := *c
	return &cp, nil
}

func (o *ownedContacts) Delete(_ context.Context, id string) (*entity.Contact, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	c, ok := o.lookup(id)
	if !ok {
		return nil, repo.ErrNotFound
	}
	delete(o.s.rows, id)
	for i, sid := range o.s.seq {
		if sid == id {
			o.s.seq = append(o.s.seq[:i], o.s.seq[i+1:]...)
			break
		}
	}
	return c, nil
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (o *ownedContacts) Search(_ context.Context, f entity.ContactFilter) ([]entity.Contact, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()
	return o.filter(func(c *entity.Contact) bool {
		return containsFold(c.Name, f.Name) && containsFold(c.Surname, f.Surname) && containsFold(c.Email, f.Email)
	}), nil
}

func (o *ownedContacts) BirthdaysBetween(_ context.Context, from, to time.Time) ([]entity.Contact, error) {
	o.s.mu.RLock()
	out := o.filter(func(c *entity.Contact) bool { return c.BirthdayBetween(from, to) })
	o.s.mu.RUnlock()
	start := from.Format("0102")
	upcoming := func(c entity.Contact) string {
		md := c.DateOfBirth.Format("0102")
		if md < start {
			return "1" + md
		}
		return "0" + md
	}
	sort.SliceStable(out, func(i, j int) bool { return upcoming(out[i]) < upcoming(out[j]) })
	return out, nil
}
