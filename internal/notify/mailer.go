// Package notify delivers operator and requester email.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer is the outbound email capability.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through an authenticated SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, password: password, from: from}
}

func (m *SMTPMailer) SendEmail(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: [Fair Work] " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
