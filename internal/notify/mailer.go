// Package notify sends operational mail to dataset authors.
package notify

import (
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers messages over SMTP.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// NewMailer creates an SMTP mailer.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Discard is a no-op sender used when no SMTP host is configured.
type Discard struct{}

// Send drops the message.
func (Discard) Send(_, _, _ string) error { return nil }

// Send composes and delivers a plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	m.logger.Info("sending mail", zap.String("to", to), zap.String("subject", subject))
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
