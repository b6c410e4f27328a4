// Package email sends plain-text notifications over SMTP. Callers that
// must not fail on delivery problems run Send through the background
// runner; registration is the one flow where a failure is surfaced.
package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer struct {
	address  string
	password string
	host     string
	port     int
}

func New(address, password, host string, port int) *Mailer {
	return &Mailer{
		address:  address,
		password: password,
		host:     host,
		port:     port,
	}
}

func (m *Mailer) Send(to string, subject string, body string) error {
	msg := strings.Join([]string{
		"From: " + m.address,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.address, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.address, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	return nil
}
