// Package mailer renders and delivers the order confirmation email.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"merabestie-backend/internal/config"
)

const SubjectOrderConfirmation = "Order Confirmation"

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail through one SMTP relay, dialing per message.
type SMTPSender struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec
	return &SMTPSender{dialer: d, from: cfg.From, timeout: cfg.Timeout}
}

// Send blocks until the relay accepted the message, ctx is done or the
// configured timeout elapsed. gomail has no context support, so an abandoned
// send keeps running in the background until the dial gives up.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		zap.L().Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", msg.To, ctx.Err())
	}
}

// NopSender drops every message. Used when mail is disabled.
type NopSender struct{}

func (NopSender) Send(_ context.Context, msg Message) error {
	zap.L().Debug("mail disabled, dropping message", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// RecordingSender keeps every message it is handed. When Err is set, Send
// fails with it and records nothing.
type RecordingSender struct {
	mu       sync.Mutex
	Err      error
	messages []Message
}

func (r *RecordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *RecordingSender) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Err = err
}

func (r *RecordingSender) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// New picks the sender for cfg.
func New(cfg config.MailConfig) Sender {
	if !cfg.Enabled {
		return NopSender{}
	}
	return NewSMTPSender(cfg)
}
