package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/dmitrymomot/accountkit/pkg/email"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Mailer turns account events into mail.
type Mailer struct {
	sender email.EmailSender
	cfg    Config
	base   *url.URL
	logger *slog.Logger
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithLogger sets the mailer logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMailer validates cfg.
func NewMailer(sender email.EmailSender, cfg Config, opts ...Option) (*Mailer, error) {
	if sender == nil {
		return nil, errors.Join(ErrInvalidConfig, errors.New("sender is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	m := &Mailer{
		sender: sender,
		cfg:    cfg,
		base:   base,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("notify"))
	return m, nil
}

// Subscribe registers the mailer for every event kind it sends mail for.
func (m *Mailer) Subscribe(d *event.Dispatcher) {
	for kind := range mails {
		d.On(kind, m.Handle)
	}
}

// Handle renders and sends the message for e.
func (m *Mailer) Handle(ctx context.Context, e event.Event) error {
	tpl, ok := mails[e.Kind]
	if !ok {
		return ErrUnsupportedEvent
	}

	msg, err := m.message(e)
	if err != nil {
		return err
	}
	subject, html, text, err := tpl.render(ctx, msg)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	err = m.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   msg.To,
		Subject:  subject,
		BodyHTML: html,
		BodyText: text,
		Tag:      string(e.Kind),
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to send account mail",
			logger.Event(string(e.Kind)), logger.AccountID(e.AccountID), logger.Error(err))
		return errors.Join(ErrDeliveryFailed, err)
	}

	m.logger.DebugContext(ctx, "account mail sent",
		logger.Event(string(e.Kind)), logger.AccountID(e.AccountID))
	return nil
}

func (m *Mailer) message(e event.Event) (message, error) {
	msg := message{
		Product:   m.cfg.ProductName,
		Support:   m.cfg.SupportEmail,
		To:        e.Get(event.KeyLogin),
		OldLogin:  e.Get(event.KeyOldLogin),
		NewLogin:  e.Get(event.KeyNewLogin),
		ExpiresAt: humanTime(e.Get(event.KeyExpiresAt)),
		Until:     humanTime(e.Get(event.KeyUntil)),
	}

	switch e.Kind {
	case event.VerificationRequested:
		msg.Link = m.link(m.cfg.VerifyPath, e.Get(event.KeyToken))
	case event.PasswordResetRequested:
		msg.Link = m.link(m.cfg.ResetPath, e.Get(event.KeyToken))
	case event.LoginChangeRequested:
		// The confirmation goes to the address being claimed.
		msg.To = msg.NewLogin
		msg.Link = m.link(m.cfg.LoginChangePath, e.Get(event.KeyToken))
	case event.LoginChanged:
		msg.To = msg.OldLogin
	}

	if msg.To == "" {
		return message{}, ErrMissingRecipient
	}
	return msg, nil
}

func (m *Mailer) link(path, key string) string {
	u := m.base.JoinPath(path)
	q := u.Query()
	q.Set("token", key)
	u.RawQuery = q.Encode()
	return u.String()
}

// humanTime reformats an RFC 3339 payload value for people. Other values
// pass through unchanged.
func humanTime(v string) string {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return t.UTC().Format("2 Jan 2006 15:04 MST")
}
