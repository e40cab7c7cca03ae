// Package notifications delivers email and realtime notifications for domain events.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"gopkg.in/gomail.v2"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier accepts emails for fire-and-forget delivery.
type Notifier interface {
	Notify(recipient, subject, body string)
}

// Sender performs the actual delivery of a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTP sender for host:port.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return s.dialer.DialAndSend(m)
}

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.InfoContext(ctx, "email (not sent, SMTP disabled)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

// Mailer queues messages and delivers them from a fixed pool of workers. Delivery
// failures are logged and counted, never returned to the caller.
type Mailer struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewMailer starts workers goroutines draining a queue of queueSize messages.
func NewMailer(sender Sender, workers, queueSize int) *Mailer {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	m := &Mailer{
		sender:  sender,
		queue:   make(chan Message, queueSize),
		timeout: 30 * time.Second,
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.work()
	}
	return m
}

// Notify enqueues an email without blocking. A full queue drops the message.
func (m *Mailer) Notify(recipient, subject, body string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		observability.EmailDeliveries.WithLabelValues("dropped").Inc()
		middleware.Logger.Warn("mailer closed, dropping email", slog.String("to", recipient), slog.String("subject", subject))
		return
	}

	select {
	case m.queue <- Message{To: recipient, Subject: subject, Body: body}:
		observability.MailQueueDepth.Inc()
	default:
		observability.EmailDeliveries.WithLabelValues("dropped").Inc()
		middleware.Logger.Warn("mail queue full, dropping email", slog.String("to", recipient), slog.String("subject", subject))
	}
}

func (m *Mailer) work() {
	defer m.wg.Done()
	for msg := range m.queue {
		observability.MailQueueDepth.Dec()
		m.deliver(msg)
	}
}

func (m *Mailer) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			observability.EmailDeliveries.WithLabelValues("failed").Inc()
			middleware.Logger.Error("email sender panicked", slog.String("to", msg.To), slog.String("panic", fmt.Sprint(r)))
		}
	}()

	if err := m.sender.Send(ctx, msg); err != nil {
		observability.EmailDeliveries.WithLabelValues("failed").Inc()
		middleware.Logger.Error("email delivery failed",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.EmailDeliveries.WithLabelValues("sent").Inc()
}

// Shutdown stops accepting mail and waits for queued messages to be delivered or ctx to end.
func (m *Mailer) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
