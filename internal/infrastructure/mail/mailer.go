// Package mail delivers transactional email over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/starterpack/webapp/internal/core/domain"
)

// Config mirrors the MAIL_* environment settings.
type Config struct {
	Server        string
	Port          int
	UseTLS        bool
	Username      string
	Password      string
	DefaultSender string
}

// SMTPMailer sends messages through a single SMTP relay.
type SMTPMailer struct {
	cfg    Config
	client *gomail.Client
}

// NewSMTPMailer builds a client for cfg. No connection is opened until the
// first message is sent.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	return &SMTPMailer{cfg: cfg, client: client}, nil
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, user *domain.User) error {
	msg, err := welcomeMessage(m.cfg.DefaultSender, user)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send welcome to %q: %w", user.Email, err)
	}
	return nil
}

func welcomeMessage(from string, user *domain.User) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("welcome sender: %w", err)
	}
	if err := msg.To(user.Email); err != nil {
		return nil, fmt.Errorf("welcome recipient: %w", err)
	}
	msg.Subject("Welcome to Go Starter Pack")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\nYour account has been created. You can now sign in with your username.\n",
		user.Username,
	))
	return msg, nil
}

// LogMailer is used when no SMTP server is configured; it records what
// would have been sent.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendWelcome(_ context.Context, user *domain.User) error {
	m.log.Info().Str("to", user.Email).Str("username", user.Username).Msg("welcome email (mail server not configured)")
	return nil
}
