// Package email sends multipart email, optionally with a PDF attachment.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wneessen/go-mail"
)

// Attachment is a file attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outbound email.
type Message struct {
	To         []string
	Subject    string
	TextBody   string
	HTMLBody   string
	Attachment *Attachment
}

// Sender is the interface for sending email messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender delivers messages over SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return errors.New("email has no recipients")
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("set to addresses: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	}
	if msg.Attachment != nil {
		m.AttachReader(msg.Attachment.Filename, bytes.NewReader(msg.Attachment.Content))
	}

	opts := []mail.Option{mail.WithPort(s.port)}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password))
	}

	client, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To[0], err)
	}
	return nil
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	messages   []*Message
	ShouldFail bool
	FailError  string
}

// Send records the message and optionally returns an error.
func (m *MockSender) Send(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of recorded messages.
func (m *MockSender) Messages() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Message, len(m.messages))
	copy(out, m.messages)
	return out
}
