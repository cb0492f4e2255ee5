// Package mailer implements the outbound email notifier consumed by the
// auth orchestrator. Delivery is best-effort by contract; callers never
// roll anything back when it fails.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/aegis-safety/backend/internal/auth"
	"github.com/aegis-safety/backend/internal/config"
)

// SMTPNotifier sends plain-text mail through a single SMTP endpoint.
type SMTPNotifier struct {
	addr    string
	from    string
	baseURL string
	send    func(addr, from string, to []string, msg []byte) error
}

var _ auth.Notifier = (*SMTPNotifier)(nil)

// NewSMTP builds the SMTP notifier from configuration.
func NewSMTP(cfg config.SMTP) *SMTPNotifier {
	return &SMTPNotifier{
		addr:    cfg.Addr,
		from:    cfg.From,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// SendVerificationEmail mails the account-verification link.
func (m *SMTPNotifier) SendVerificationEmail(ctx context.Context, email, firstName, token string) error {
	body := verificationBody(firstName, m.baseURL, token)
	return m.deliver(ctx, email, "Verify your email address", body)
}

// SendPasswordResetEmail mails the password-reset link.
func (m *SMTPNotifier) SendPasswordResetEmail(ctx context.Context, email, firstName, token string) error {
	body := passwordResetBody(firstName, m.baseURL, token)
	return m.deliver(ctx, email, "Reset your password", body)
}

func (m *SMTPNotifier) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	if err := m.send(m.addr, m.from, []string{to}, []byte(msg)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send email")
	}
	return nil
}

func verificationBody(firstName, baseURL, token string) string {
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"Welcome to the Aegis safety platform.\n\n"+
			"Please open the link below to verify your email address:\n"+
			"%s/api/auth/verify-email?token=%s\n\n"+
			"If you did not create an account, please ignore this email.\n\n"+
			"This link will expire in 24 hours.\n",
		firstName, baseURL, token,
	)
}

func passwordResetBody(firstName, baseURL, token string) string {
	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"You have requested to reset your password.\n\n"+
			"Please open the link below to choose a new password:\n"+
			"%s/reset-password?token=%s\n\n"+
			"If you did not request a password reset, please ignore this email.\n\n"+
			"This link will expire in 1 hour.\n",
		firstName, baseURL, token,
	)
}

// LogNotifier prints the notification instead of sending it. Used in
// development when no SMTP endpoint is configured.
type LogNotifier struct {
	Logger auth.Logger
}

var _ auth.Notifier = (*LogNotifier)(nil)

func (l *LogNotifier) SendVerificationEmail(_ context.Context, email, _, token string) error {
	l.Logger.Info("verification email for %s: token=%s", email, token)
	return nil
}

func (l *LogNotifier) SendPasswordResetEmail(_ context.Context, email, _, token string) error {
	l.Logger.Info("password reset email for %s: token=%s", email, token)
	return nil
}
