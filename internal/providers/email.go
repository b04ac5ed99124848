package providers

import (
	"fmt"

	"alert-service/internal/config"
	"alert-service/pkg/email"
)

// SendEmail delivers a message over the configured SMTP account. An empty
// recipient falls back to the configured default.
func SendEmail(cfg config.Config, recipient, subject, body string) error {
	if !cfg.Email.Enabled {
		return fmt.Errorf("email provider is disabled")
	}
	if recipient == "" {
		recipient = cfg.Email.DefaultRecipient
	}
	if recipient == "" {
		return fmt.Errorf("no email recipient configured")
	}
	if cfg.Email.SMTPServer == "" || cfg.Email.SMTPPort == 0 || cfg.Email.Username == "" || cfg.Email.Password == "" {
		return fmt.Errorf("missing email configuration: SMTPServer, SMTPPort, Username, or Password is empty")
	}

	if err := email.Send(cfg.Email.SMTPServer, cfg.Email.SMTPPort, cfg.Email.Username, cfg.Email.Password, cfg.Email.FromName, recipient, subject, body); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", recipient, err)
	}
	return nil
}
