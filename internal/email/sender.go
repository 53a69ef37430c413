// Package email sends transactional mail over SMTP.
package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/burnick/demoapp-sub000/internal/config"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
)

// Sender delivers an email with HTML and plain-text bodies. The recipient
// gets both as multipart/alternative.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender implements Sender over SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// FromConfig builds an SMTPSender from the smtp config section.
func FromConfig(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		Host:    cfg.SMTP.Host,
		Port:    cfg.SMTP.Port,
		From:    cfg.SMTP.From,
		User:    cfg.SMTP.Username,
		Pass:    cfg.SMTP.Password,
		TLSMode: cfg.SMTP.TLS,
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("email.smtp"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.String("to", to),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // dev only
	}

	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto"/"starttls": go-mail negotiates STARTTLS when offered
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Info("email sent")
	return nil
}

// NoopSender is used when no SMTP host is configured.
type NoopSender struct{}

func (NoopSender) Send(to, subject, htmlBody, textBody string) error {
	logger.L().Debug("email delivery disabled, dropping message",
		logger.Component("email.noop"),
		logger.String("to", to),
		logger.String("subject", subject),
	)
	return nil
}
