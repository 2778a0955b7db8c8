package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

var contactCols = []string{"id", "owner_id", "name", "surname", "email", "mobile", "date_of_birth", "created_at", "updated_at"}

const (
	ownerID   = "6b2f3f9e-7d7c-4c55-9a53-0d7c0b1f8a01"
	contactID = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

func contactRow(rows *pgxmock.Rows, id, name string, dob *time.Time) *pgxmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, ownerID, name, "Lee", name+"@example.com", "+1", dob, now, now)
}

func TestContactStore_GetIsOwnerScoped(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)
	assert.Equal(t, ownerID, owned.OwnerID())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1 AND id = $2")).
		WithArgs(ownerID, contactID).
		WillReturnRows(contactRow(pgxmock.NewRows(contactCols), contactID, "anna", (*time.Time)(nil)))

	c, err := owned.Get(context.Background(), contactID)
	require.NoError(t, err)
	assert.Equal(t, "anna", c.Name)
	assert.Nil(t, c.DateOfBirth)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1 AND id = $2")).
		WithArgs(ownerID, contactID).
		WillReturnRows(pgxmock.NewRows(contactCols))
	_, err = owned.Get(context.Background(), contactID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// malformed ids never reach the database
	_, err = owned.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestContactStore_List(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)

	rows := pgxmock.NewRows(contactCols)
	contactRow(rows, contactID, "anna", (*time.Time)(nil))
	contactRow(rows, "c2", "bob", (*time.Time)(nil))
	mock.ExpectQuery(regexp.QuoteMeta("OFFSET $2 LIMIT $3")).
		WithArgs(ownerID, 5, 2).
		WillReturnRows(rows)

	list, err := owned.List(context.Background(), 5, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[1].Name)
}

func TestContactStore_Create(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)
	dob := time.Date(1990, time.May, 4, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO contacts")).
		WithArgs(ownerID, pgxmock.AnyArg(), "anna", "Lee", "anna@example.com", "+1", &dob).
		WillReturnRows(contactRow(pgxmock.NewRows(contactCols), contactID, "anna", &dob))

	c, err := owned.Create(context.Background(), entity.ContactInput{
		Name: "anna", Surname: "Lee", Email: "anna@example.com", Mobile: "+1", DateOfBirth: &dob,
	})
	require.NoError(t, err)
	assert.Equal(t, ownerID, c.OwnerID)
	require.NotNil(t, c.DateOfBirth)
	assert.True(t, dob.Equal(*c.DateOfBirth))
}

func TestContactStore_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM contacts")).
		WithArgs(ownerID, contactID).
		WillReturnRows(pgxmock.NewRows(contactCols))

	_, err := owned.Delete(context.Background(), contactID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestContactStore_Search(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE owner_id = $1 AND name ILIKE $2 AND email ILIKE $3 ORDER BY")).
		WithArgs(ownerID, "%an\\_n%", "%100\\%%").
		WillReturnRows(contactRow(pgxmock.NewRows(contactCols), contactID, "an_na", (*time.Time)(nil)))

	res, err := owned.Search(context.Background(), entity.ContactFilter{Name: "an_n", Email: "100%"})
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestContactStore_BirthdaysBetween(t *testing.T) {
	mock := newMock(t)
	owned := NewContactStore(mock).ForOwner(ownerID)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("BETWEEN $2 AND $3")).
		WithArgs(ownerID, "0301", "0308").
		WillReturnRows(pgxmock.NewRows(contactCols))
	_, err := owned.BirthdaysBetween(ctx,
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("'MMDD') >= $2 OR")).
		WithArgs(ownerID, "1229", "0105").
		WillReturnRows(pgxmock.NewRows(contactCols))
	_, err = owned.BirthdaysBetween(ctx,
		time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	june := time.Date(1990, time.June, 1, 0, 0, 0, 0, time.UTC)
	for _, days := range []int{365, 366} {
		from := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`date_of_birth IS NOT NULL\s+ORDER BY`).
			WithArgs(ownerID, "0315").
			WillReturnRows(contactRow(pgxmock.NewRows(contactCols), contactID, "June", &june))
		res, err := owned.BirthdaysBetween(ctx, from, from.AddDate(0, 0, days))
		require.NoError(t, err)
		require.Len(t, res, 1, "days=%d", days)
		assert.Equal(t, "June", res[0].Name)
	}
}
