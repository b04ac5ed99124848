package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Send delivers a plain-text message over SMTP.
func Send(server string, port int, username, password, fromName, to, subject, body string) error {
	if !strings.Contains(to, "@") {
		return fmt.Errorf("invalid email address: %s", to)
	}

	from := username
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, username)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body))
	auth := smtp.PlainAuth("", username, password, server)
	addr := fmt.Sprintf("%s:%d", server, port)
	return smtp.SendMail(addr, auth, username, []string{to}, msg)
}
