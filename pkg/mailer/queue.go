package mailer

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	mailtpl "github.com/oksasatya/go-contacts-api/pkg/mailer/templates"
)

// ConfirmPath is the route the confirmation link points at.
const ConfirmPath = "/api/auth/confirmed_email/"

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender enqueues confirmation emails for the email worker.
type QueueSender struct {
	Pub      Publisher
	BaseURL  string
	Branding mailtpl.Branding
	TTL      time.Duration
}

func NewQueueSender(pub Publisher, baseURL string, branding mailtpl.Branding, ttl time.Duration) *QueueSender {
	return &QueueSender{Pub: pub, BaseURL: baseURL, Branding: branding, TTL: ttl}
}

// ConfirmURL builds the absolute link for token.
func ConfirmURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + ConfirmPath + url.PathEscape(token)
}

func (q *QueueSender) SendConfirmation(ctx context.Context, email, username, token string) error {
	if q.Pub == nil {
		return errors.New("email queue not configured")
	}
	var opts []mailtpl.Option
	if q.TTL > 0 {
		opts = append(opts, mailtpl.WithExpiresIn(q.TTL))
	}
	job := EmailJob{
		To:       email,
		Template: mailtpl.ConfirmEmail,
		Data:     mailtpl.NewConfirmEmailData(q.Branding, username, email, ConfirmURL(q.BaseURL, token), opts...),
	}
	return q.Pub.PublishJSON(ctx, job)
}
