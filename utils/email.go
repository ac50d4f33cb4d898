package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends HTML mail over SMTP
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer returns nil when no SMTP host is configured
func NewMailer(config EmailConfig) *Mailer {
	if config.Host == "" {
		return nil
	}
	if config.Port == 0 {
		config.Port = DefaultSMTPPort
	}
	from := config.From
	if from == "" {
		from = config.Username
	}
	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// Send delivers one message to a single recipient
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
