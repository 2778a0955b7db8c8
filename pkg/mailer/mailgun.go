package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var _ Sender = (*Mailgun)(nil)

// Mailgun delivers rendered emails through the Mailgun HTTP API.
type Mailgun struct {
	Sender  string
	Timeout time.Duration

	client *mg.MailgunImpl
}

// NewMailgun builds a sender for domain. An optional apiBase overrides the
// endpoint, e.g. mg.APIBaseEU.
func NewMailgun(domain, apiKey, sender string, apiBase ...string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if len(apiBase) > 0 && apiBase[0] != "" {
		client.SetAPIBase(apiBase[0])
	}
	return &Mailgun{Sender: sender, Timeout: 10 * time.Second, client: client}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return fmt.Errorf("%w: mailgun: empty recipient", ErrBadJob)
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		if rejected(err) {
			return fmt.Errorf("%w: mailgun send: %v", ErrBadJob, err)
		}
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}

// rejected reports a 4xx answer other than 429; resending the same
// message will not change it.
func rejected(err error) bool {
	var resp *mg.UnexpectedResponseError
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Actual >= 400 && resp.Actual < 500 && resp.Actual != http.StatusTooManyRequests
}
