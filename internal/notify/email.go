package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/oquants/tradewatch/pkg/types"
)

// EmailSink delivers notifications over SMTP. Defaults target Gmail with an
// app password, which needs no domain verification.
type EmailSink struct {
	cfg  types.SMTPConfig
	send func(m *gomail.Message) error
}

// NewEmailSink creates a new SMTP notification sink.
func NewEmailSink(cfg types.SMTPConfig) (*EmailSink, error) {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("at least one recipient required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials required")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailSink{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}, nil
}

// Name returns the sink identifier.
func (s *EmailSink) Name() string { return "email" }

// Send delivers the notification as a plain-text email.
func (s *EmailSink) Send(n types.Notification) error {
	m := s.compose(n)
	if err := s.send(m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (s *EmailSink) compose(n types.Notification) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, "tradewatch")
	m.SetHeader("To", s.cfg.To...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s", n.Level, n.Source))

	body := n.Message
	if n.RunID != "" {
		body += fmt.Sprintf("\n\nrun: %s", n.RunID)
	}
	if !n.Timestamp.IsZero() {
		body += fmt.Sprintf("\nat:  %s", n.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	m.SetBody("text/plain", body)
	return m
}
