// Package mail provides SMTP delivery for run notifications.
package mail

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/chrond/chrond/errors"
)

// SMTPMailer delivers messages through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
}

// NewSMTPMailer creates a mailer for the given relay. Username and
// password may be empty for unauthenticated relays.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// Send delivers one message.
func (m *SMTPMailer) Send(from string, to []string, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}
	return nil
}

// LoggingMailer writes messages to the log instead of delivering them.
// Used when no SMTP relay is configured.
type LoggingMailer struct {
	logger *zap.SugaredLogger
}

// NewLoggingMailer creates a log-only mailer.
func NewLoggingMailer(logger *zap.SugaredLogger) *LoggingMailer {
	return &LoggingMailer{logger: logger}
}

// Send logs the message instead of sending it.
func (m *LoggingMailer) Send(from string, to []string, subject, body string) error {
	m.logger.Infow("Mail delivery disabled, logging message",
		"from", from,
		"to", to,
		"subject", subject,
		"body_bytes", len(body))
	return nil
}
