// Package mail delivers transactional email over SMTP. Delivery runs on
// the worker; handlers only enqueue.
package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// Config carries SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Sender sends mail through one SMTP endpoint.
type Sender struct {
	cfg Config
}

// NewSender builds a Sender instance.
func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

// Send delivers one message. The body is plain text.
func (s *Sender) Send(to, subject, body string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

// OTPSubject is the subject line for verification mail.
const OTPSubject = "Verify your Raama account"

// OTPBody renders the verification mail body.
func OTPBody(name, otp string) string {
	return fmt.Sprintf(`Hi %s,

Welcome to Raama! Use this code to verify your email address:

    %s

The code expires in 10 minutes. If you did not sign up, ignore this mail.

— The Raama team`, name, otp)
}
