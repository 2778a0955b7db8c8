package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mailtpl "github.com/oksasatya/go-contacts-api/pkg/mailer/templates"
)

// ErrBadJob marks a message that can never be delivered; it should be dropped.
var ErrBadJob = errors.New("bad email job")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Dispatcher renders queued jobs and hands them to a Sender.
type Dispatcher struct {
	Sender  Sender
	Timeout time.Duration
}

func NewDispatcher(s Sender) *Dispatcher {
	return &Dispatcher{Sender: s, Timeout: 15 * time.Second}
}

// Handle processes one raw queue message. Errors wrapping ErrBadJob must not
// be retried; other errors are transient.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	ensureRecipient(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrBadJob, job.Template, err)
		}
		subject, text, html = s, t, h
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrBadJob)
	}

	c, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	return d.Sender.Send(c, job.To, subject, text, html)
}

func ensureRecipient(job *EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
}
