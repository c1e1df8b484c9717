package mail

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"sync"
)

var ErrNoRecipient = errors.New("message has no recipient")

// Message is a single outbound email.
type Message struct {
	From    mail.Address
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages synchronously.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleMailer writes messages to the log instead of delivering them.
type ConsoleMailer struct {
	logger *slog.Logger
}

func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger}
}

func (c *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	if msg.To.Address == "" {
		return ErrNoRecipient
	}
	c.logger.InfoContext(ctx, "Console mail",
		"from", msg.From.String(),
		"to", msg.To.String(),
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}

// MockMailer records sent messages. Set Err to make every Send fail.
type MockMailer struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(_ context.Context, msg Message) error {
	if m.Err != nil {
		return m.Err
	}
	if msg.To.Address == "" {
		return ErrNoRecipient
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, msg)
	m.mu.Unlock()
	return nil
}

func (m *MockMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Sent...)
}
