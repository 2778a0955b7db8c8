package entity

import "time"

// Contact is a tenant-owned address book entry.
// OwnerID is stamped from the resolved identity at creation and never changes.
type Contact struct {
	ID          string
	OwnerID     string
	Name        string
	Surname     string
	Email       string
	Mobile      string
	DateOfBirth *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactInput carries the client-editable fields of a contact.
type ContactInput struct {
	Name        string
	Surname     string
	Email       string
	Mobile      string
	DateOfBirth *time.Time
}

// ContactFilter is a partial-match search over name, surname and email.
// Empty fields are ignored; set fields are combined with AND.
type ContactFilter struct {
	Name    string
	Surname string
	Email   string
}

func (f ContactFilter) IsEmpty() bool {
	return f.Name == "" && f.Surname == "" && f.Email == ""
}

// Apply copies the editable fields onto the contact.
func (c *Contact) Apply(in ContactInput) {
	c.Name = in.Name
	c.Surname = in.Surname
	c.Email = in.Email
	c.Mobile = in.Mobile
	c.DateOfBirth = in.DateOfBirth
}

// BirthdayBetween reports whether the contact's birthday (month and day)
// falls within [from, to], wrapping across the new year when to < from.
// A window of a year or more matches every birthday.
func (c *Contact) BirthdayBetween(from, to time.Time) bool {
	if c.DateOfBirth == nil {
		return false
	}
	if SpansYear(from, to) {
		return true
	}
	b := monthDay(*c.DateOfBirth)
	lo, hi := monthDay(from), monthDay(to)
	if lo <= hi {
		return b >= lo && b <= hi
	}
	return b >= lo || b <= hi
}

// SpansYear reports whether [from, to] covers every month and day of the
// calendar, in which case a month-day range no longer describes it.
func SpansYear(from, to time.Time) bool {
	return !to.Before(from.AddDate(0, 0, 365))
}

func monthDay(t time.Time) int {
	return int(t.Month())*100 + t.Day()
}
