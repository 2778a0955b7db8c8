package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer writes the confirmation link to the log instead of sending it.
// Used when MAIL_SEND_ENABLED=false.
type LogMailer struct {
	Logger  *logrus.Logger
	BaseURL string
}

func (m LogMailer) SendConfirmation(_ context.Context, email, username, token string) error {
	m.Logger.WithFields(logrus.Fields{
		"email":    email,
		"username": username,
		"link":     ConfirmURL(m.BaseURL, token),
	}).Info("confirmation email (not sent)")
	return nil
}
