// Package mail delivers rendered answers over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

// ErrNotConfigured is returned when no sender account was provided.
var ErrNotConfigured = errors.New("mail sender is not configured")

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Dialer opens an authenticated SMTP session.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPTransport sends messages synchronously through one SMTP account.
type SMTPTransport struct {
	from   string
	dialer Dialer
}

// NewSMTPTransport builds a transport that authenticates with the configured
// account and upgrades the connection with STARTTLS.
func NewSMTPTransport(cfg model.MailConfig) *SMTPTransport {
	return &SMTPTransport{
		from:   cfg.Email,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Email, cfg.AppPassword),
	}
}

// NewTransport builds a transport on top of any Dialer.
func NewTransport(from string, dialer Dialer) *SMTPTransport {
	return &SMTPTransport{from: from, dialer: dialer}
}

// From returns the sender address.
func (t *SMTPTransport) From() string { return t.from }

// Send dials, sends msg and closes the session. It returns once the server
// has accepted or rejected the message.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if t.from == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := t.compose(msg)

	sc, err := t.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	if err := sc.Send(t.from, []string{msg.To}, m); err != nil {
		sc.Close()
		return fmt.Errorf("smtp send: %w", err)
	}
	if err := sc.Close(); err != nil {
		return fmt.Errorf("smtp quit: %w", err)
	}
	return nil
}

func (t *SMTPTransport) compose(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if a := msg.Attachment; a != nil {
		data := a.Data
		m.Attach(a.Filename,
			gomail.Rename(a.Filename),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {fmt.Sprintf("%s; name=%q", a.ContentType, a.Filename)},
			}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m
}
