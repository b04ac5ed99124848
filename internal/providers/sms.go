package providers

import (
	"fmt"
	"strings"

	"alert-service/internal/config"
	"alert-service/pkg/email"
	"alert-service/pkg/sms"
)

// SendSMS delivers a short message to a phone number. The carrier email
// gateway is preferred when configured; otherwise the Twilio messages API
// is used. An empty recipient falls back to the configured default.
func SendSMS(cfg config.Config, recipient, body string) error {
	switch {
	case cfg.SMS.Enabled:
		return sendGatewaySMS(cfg, recipient, body)
	case cfg.Twilio.Enabled:
		return sendTwilioSMS(cfg, recipient, body)
	default:
		return fmt.Errorf("no SMS provider is enabled")
	}
}

// sendGatewaySMS emails <number>@<carrier_gateway> through the SMTP
// account; carriers deliver the body as a text message.
func sendGatewaySMS(cfg config.Config, recipient, body string) error {
	if recipient == "" {
		recipient = cfg.SMS.DefaultRecipient
	}
	if recipient == "" {
		return fmt.Errorf("no SMS recipient configured")
	}
	if cfg.SMS.CarrierGateway == "" {
		return fmt.Errorf("missing SMS configuration: carrier_gateway is empty")
	}

	number := strings.TrimPrefix(recipient, "+")
	address := fmt.Sprintf("%s@%s", number, cfg.SMS.CarrierGateway)
	if err := email.Send(cfg.Email.SMTPServer, cfg.Email.SMTPPort, cfg.Email.Username, cfg.Email.Password, cfg.Email.FromName, address, "", body); err != nil {
		return fmt.Errorf("failed to send gateway SMS to %s: %w", recipient, err)
	}
	return nil
}

func sendTwilioSMS(cfg config.Config, recipient, body string) error {
	if recipient == "" {
		recipient = cfg.Twilio.DefaultToPhone
	}
	if recipient == "" {
		return fmt.Errorf("no SMS recipient configured")
	}
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.DefaultFromPhone == "" {
		return fmt.Errorf("missing Twilio configuration: AccountSID, AuthToken, or DefaultFromPhone is empty")
	}
	return sms.Send(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.DefaultFromPhone, recipient, body)
}
