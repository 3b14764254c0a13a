package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// EmailChannel sends failure messages over SMTP with PLAIN auth.
type EmailChannel struct {
	addr     string
	from     string
	password string
	to       string
}

// NewEmailChannel constructs an email channel. addr is host:port of the SMTP
// server; from doubles as the auth identity.
func NewEmailChannel(addr, from, password, to string) *EmailChannel {
	return &EmailChannel{addr: addr, from: from, password: password, to: to}
}

// Name identifies the channel in logs and combined errors.
func (c *EmailChannel) Name() string { return "email" }

// Deliver sends a plain-text message. net/smtp has no context support, so the
// caller's deadline is not observed here; the dial uses the package default.
func (c *EmailChannel) Deliver(_ context.Context, subject, body string) error {
	host, _, err := net.SplitHostPort(c.addr)
	if err != nil {
		return fmt.Errorf("smtp address %q: %w", c.addr, err)
	}

	msg := fmt.Sprintf("From: Allocation Bot <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		c.from, c.to, subject, body)

	auth := smtp.PlainAuth("", c.from, c.password, host)
	if err := smtp.SendMail(c.addr, auth, c.from, []string{c.to}, []byte(msg)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
