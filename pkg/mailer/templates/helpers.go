package templates

import (
	"strings"
	"time"
)

// Branding carries the app-wide fields every email shows.
type Branding struct {
	AppName    string
	SupportURL string
}

// Option pattern
type Option func(*EmailData)

func WithConfirmURL(url string) Option { return func(d *EmailData) { d.ConfirmURL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewBaseEmailData fills the common fields, then applies opts.
func NewBaseEmailData(b Branding, typ, username, email string, opts ...Option) EmailData {
	d := EmailData{
		Username:   strings.TrimSpace(username),
		Email:      email,
		Type:       typ,
		AppName:    b.AppName,
		SupportURL: b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewConfirmEmailData(b Branding, username, email, confirmURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithConfirmURL(confirmURL)}, opts...)
	return ToMap(NewBaseEmailData(b, ConfirmEmail, username, email, opts...))
}
