package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/vetdesk/vetdesk-api/internal/config"
)

type Service interface {
	SendMembershipInvite(ctx context.Context, to, clinicName, role string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendMembershipInvite(ctx context.Context, to, clinicName, role string) error {
	subject := fmt.Sprintf("You have been added to %s", clinicName)
	body := fmt.Sprintf(
		"<p>You have been added to <b>%s</b> as <b>%s</b>.</p><p>Sign in to get started.</p>",
		clinicName, role,
	)
	return s.send(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(ctx, to, subject, content)
}

func (s *smtpService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
