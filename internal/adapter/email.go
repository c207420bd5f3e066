package adapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	mail "gopkg.in/mail.v2"
)

const defaultEmailSubject = "通知消息"

// Email delivers messages over SMTP. The connection descriptor is
// "host:port:username:password:recipient" where the first four fields
// are fixed and the remainder is joined back as the recipient (mail
// addresses may legally contain colons in some setups).
type Email struct {
	host      string
	port      int
	username  string
	password  string
	recipient string
	parseErr  string
	send      func(m *mail.Message, d *mail.Dialer) error
}

func NewEmail(descriptor string) *Email {
	e := &Email{
		send: func(m *mail.Message, d *mail.Dialer) error { return d.DialAndSend(m) },
	}

	parts := strings.Split(descriptor, ":")
	if len(parts) < 5 {
		e.parseErr = "invalid email descriptor, expected host:port:username:password:recipient"
		return e
	}

	port, err := strconv.Atoi(parts[1])
	if err != nil {
		e.parseErr = "invalid email descriptor, port is not numeric"
		return e
	}

	e.host = parts[0]
	e.port = port
	e.username = parts[2]
	e.password = parts[3]
	e.recipient = strings.Join(parts[4:], ":")
	return e
}

func (e *Email) Send(ctx context.Context, message string) Outcome {
	if e.parseErr != "" {
		return failureOutcome(0, e.parseErr)
	}
	if err := ctx.Err(); err != nil {
		return errorOutcome(err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", e.username)
	m.SetHeader("To", e.recipient)
	m.SetHeader("Subject", defaultEmailSubject)
	m.SetBody("text/plain", message)

	dialer := mail.NewDialer(e.host, e.port, e.username, e.password)
	dialer.SSL = e.port == 465

	if err := e.send(m, dialer); err != nil {
		return errorOutcome(err)
	}

	// SMTP has no status code; a completed send maps to 200.
	return successOutcome(http.StatusOK, "email sent")
}
