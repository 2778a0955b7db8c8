package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/infrastructure/memory"
)

// fakeIndex ignores the owner on Search so tests can check the service
// re-scopes every hit.
type fakeIndex struct {
	docs    map[string]entity.Contact
	removed []string
	err     error
}

func (x *fakeIndex) Index(_ context.Context, c *entity.Contact) error {
	if x.err != nil {
		return x.err
	}
	if x.docs == nil {
		x.docs = map[string]entity.Contact{}
	}
	x.docs[c.ID] = *c
	return nil
}

func (x *fakeIndex) Remove(_ context.Context, _ string, id string) error {
	x.removed = append(x.removed, id)
	delete(x.docs, id)
	return x.err
}

func (x *fakeIndex) Search(_ context.Context, _ string, _ string, _ int) ([]entity.Contact, error) {
	if x.err != nil {
		return nil, x.err
	}
	out := make([]entity.Contact, 0, len(x.docs))
	for _, c := range x.docs {
		out = append(out, entity.Contact{ID: c.ID})
	}
	return out, nil
}

func newContactService(idx *fakeIndex) *ContactService {
	logger, _ := test.NewNullLogger()
	s := NewContactService(memory.NewContactStore(), nil, logger)
	if idx != nil {
		s.Index = idx
	}
	return s
}

var (
	alice = &entity.User{ID: "alice-id", Email: "alice@example.com"}
	bob   = &entity.User{ID: "bob-id", Email: "bob@example.com"}
)

func TestContacts_RequireIdentity(t *testing.T) {
	s := newContactService(nil)
	ctx := context.Background()

	_, err := s.List(ctx, nil, 0, 10)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = s.Create(ctx, &entity.User{}, entity.ContactInput{Name: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestContacts_TenantIsolation(t *testing.T) {
	s := newContactService(nil)
	ctx := context.Background()

	c, err := s.Create(ctx, alice, entity.ContactInput{Name: "Carol", Email: "carol@example.com"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.OwnerID)

	_, err = s.Get(ctx, bob, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, bob, c.ID, entity.ContactInput{Name: "Mallory"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Delete(ctx, bob, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, bob, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
	found, err := s.Search(ctx, bob, entity.ContactFilter{Email: "carol"})
	require.NoError(t, err)
	assert.Empty(t, found)

	got, err := s.Get(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.Name)
}

func TestContacts_ListLimits(t *testing.T) {
	s := newContactService(nil)
	ctx := context.Background()
	for i := 0; i < 120; i++ {
		_, err := s.Create(ctx, alice, entity.ContactInput{Name: fmt.Sprintf("c%03d", i)})
		require.NoError(t, err)
	}

	list, err := s.List(ctx, alice, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, DefaultListLimit)

	list, err = s.List(ctx, alice, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, list, MaxListLimit)

	list, err = s.List(ctx, alice, -5, 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c000", list[0].Name)
}

func TestContacts_UpdateAndDelete(t *testing.T) {
	idx := &fakeIndex{}
	s := newContactService(idx)
	ctx := context.Background()

	c, err := s.Create(ctx, alice, entity.ContactInput{Name: "Carol"})
	require.NoError(t, err)
	assert.Contains(t, idx.docs, c.ID)

	up, err := s.Update(ctx, alice, c.ID, entity.ContactInput{Name: "Caroline", Mobile: "+100"})
	require.NoError(t, err)
	assert.Equal(t, "Caroline", up.Name)
	assert.Equal(t, "Caroline", idx.docs[c.ID].Name)

	del, err := s.Delete(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, del.ID)
	assert.Equal(t, []string{c.ID}, idx.removed)

	_, err = s.Delete(ctx, alice, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContacts_IndexFailureIsNotFatal(t *testing.T) {
	s := newContactService(&fakeIndex{err: errors.New("es down")})
	c, err := s.Create(context.Background(), alice, entity.ContactInput{Name: "Carol"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
}

func TestContacts_Search(t *testing.T) {
	s := newContactService(nil)
	ctx := context.Background()
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "Anna", Surname: "Lee"})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "Hanna", Surname: "Lee"})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "Bob", Surname: "Leeds"})

	_, err := s.Search(ctx, alice, entity.ContactFilter{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := s.Search(ctx, alice, entity.ContactFilter{Name: "anna", Surname: "lee"})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = s.Search(ctx, alice, entity.ContactFilter{Surname: "lee"})
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestContacts_Birthdays(t *testing.T) {
	s := newContactService(nil)
	s.Now = func() time.Time { return time.Date(2025, time.December, 29, 15, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	dob := func(m time.Month, d int) *time.Time {
		t := time.Date(1985, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "today", DateOfBirth: dob(time.December, 29)})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "newyear", DateOfBirth: dob(time.January, 3)})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "late", DateOfBirth: dob(time.January, 10)})
	_, _ = s.Create(ctx, bob, entity.ContactInput{Name: "foreign", DateOfBirth: dob(time.December, 30)})

	res, err := s.Birthdays(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "today", res[0].Name)
	assert.Equal(t, "newyear", res[1].Name)

	res, err = s.Birthdays(ctx, alice, 30)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestContacts_BirthdaysFullYear(t *testing.T) {
	s := newContactService(nil)
	s.Now = func() time.Time { return time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	dob := func(m time.Month, d int) *time.Time {
		t := time.Date(1988, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "june", DateOfBirth: dob(time.June, 1)})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "yesterday", DateOfBirth: dob(time.March, 14)})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "leap", DateOfBirth: dob(time.February, 29)})
	_, _ = s.Create(ctx, alice, entity.ContactInput{Name: "unknown"})

	for _, days := range []int{365, 366, 1000} {
		res, err := s.Birthdays(ctx, alice, days)
		require.NoError(t, err)
		require.Len(t, res, 3, "days=%d", days)
		assert.Equal(t, "june", res[0].Name)
		assert.Equal(t, "leap", res[1].Name)
		assert.Equal(t, "yesterday", res[2].Name)
	}

	res, err := s.Birthdays(ctx, alice, 100)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "june", res[0].Name)
}

func TestContacts_FullText(t *testing.T) {
	idx := &fakeIndex{}
	s := newContactService(idx)
	ctx := context.Background()

	mine, err := s.Create(ctx, alice, entity.ContactInput{Name: "Carol"})
	require.NoError(t, err)
	_, err = s.Create(ctx, bob, entity.ContactInput{Name: "Carol"})
	require.NoError(t, err)

	res, err := s.FullText(ctx, alice, "carol", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, mine.ID, res[0].ID)
	assert.Equal(t, "Carol", res[0].Name)

	_, err = s.FullText(ctx, alice, "", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s.Index = nil
	_, err = s.FullText(ctx, alice, "carol", 10)
	assert.ErrorIs(t, err, ErrUnavailable)
}
