package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-contacts-api/internal/domain/entity"
	"github.com/oksasatya/go-contacts-api/internal/domain/repository"
)

const contactColumns = `id, owner_id, name, surname, email, mobile, date_of_birth, created_at, updated_at`

// ContactStore hands out owner-bound views over the contacts table.
type ContactStore struct {
	db DB
}

func NewContactStore(db DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) ForOwner(ownerID string) repository.OwnedContacts {
	return &ownedContacts{db: s.db, owner: ownerID}
}

// ownedContacts puts owner_id = $1 into every statement.
type ownedContacts struct {
	db    DB
	owner string
}

func (o *ownedContacts) OwnerID() string { return o.owner }

func scanContact(row pgx.Row) (*entity.Contact, error) {
	c := &entity.Contact{}
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Surname, &c.Email, &c.Mobile,
		&c.DateOfBirth, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (o *ownedContacts) query(ctx context.Context, sql string, args ...any) ([]entity.Contact, error) {
	rows, err := o.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (o *ownedContacts) List(ctx context.Context, skip, limit int) ([]entity.Contact, error) {
	return o.query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, o.owner, skip, limit)
}

func (o *ownedContacts) Get(ctx context.Context, id string) (*entity.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return scanContact(o.db.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = $1 AND id = $2
	`, o.owner, id))
}

func (o *ownedContacts) Create(ctx context.Context, in entity.ContactInput) (*entity.Contact, error) {
	return scanContact(o.db.QueryRow(ctx, `
		INSERT INTO contacts (id, owner_id, name, surname, email, mobile, date_of_birth)
		VALUES ($2, $1, $3, $4, $5, $6, $7)
		RETURNING `+contactColumns,
		o.owner, uuid.NewString(), in.Name, in.Surname, in.Email, in.Mobile, in.DateOfBirth))
}

func (o *ownedContacts) Update(ctx context.Context, id string, in entity.ContactInput) (*entity.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return scanContact(o.db.QueryRow(ctx, `
		UPDATE contacts
		SET name = $3, surname = $4, email = $5, mobile = $6, date_of_birth = $7, updated_at = now()
		WHERE owner_id = $1 AND id = $2
		RETURNING `+contactColumns,
		o.owner, id, in.Name, in.Surname, in.Email, in.Mobile, in.DateOfBirth))
}

func (o *ownedContacts) Delete(ctx context.Context, id string) (*entity.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return scanContact(o.db.QueryRow(ctx, `
		DELETE FROM contacts
		WHERE owner_id = $1 AND id = $2
		RETURNING `+contactColumns, o.owner, id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (o *ownedContacts) Search(ctx context.Context, f entity.ContactFilter) ([]entity.Contact, error) {
	var (
		sb   strings.Builder
		args = []any{o.owner}
	)
	sb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE owner_id = $1`)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, containsPattern(val))
		sb.WriteString(" AND " + col + " ILIKE $" + strconv.Itoa(len(args)))
	}
	add("name", f.Name)
	add("surname", f.Surname)
	add("email", f.Email)
	sb.WriteString(" ORDER BY created_at, id")
	return o.query(ctx, sb.String(), args...)
}

func (o *ownedContacts) BirthdaysBetween(ctx context.Context, from, to time.Time) ([]entity.Contact, error) {
	lo, hi := from.Format("0102"), to.Format("0102")
	args := []any{o.owner, lo}
	window := ""
	switch {
	case entity.SpansYear(from, to):
		// every birthday matches
	case lo > hi:
		window = ` AND (to_char(date_of_birth, 'MMDD') >= $2 OR to_char(date_of_birth, 'MMDD') <= $3)`
		args = append(args, hi)
	default:
		window = ` AND to_char(date_of_birth, 'MMDD') BETWEEN $2 AND $3`
		args = append(args, hi)
	}
	return o.query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE owner_id = $1 AND date_of_birth IS NOT NULL`+window+`
		ORDER BY to_char(date_of_birth, 'MMDD') < $2::text, to_char(date_of_birth, 'MMDD'), id
	`, args...)
}
