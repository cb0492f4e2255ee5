package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-safety/backend/internal/config"
)

func newCapturingNotifier(send func(addr, from string, to []string, msg []byte) error) *SMTPNotifier {
	n := NewSMTP(config.SMTP{
		Addr:    "smtp.example.com:25",
		From:    "no-reply@aegis-safety.io",
		BaseURL: "https://app.example.com/",
	})
	n.send = send
	return n
}

func TestSMTPNotifier_SendVerificationEmail(t *testing.T) {
	var gotTo []string
	var gotMsg string

	n := newCapturingNotifier(func(_, _ string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = string(msg)
		return nil
	})

	err := n.SendVerificationEmail(context.Background(), "ada@example.com", "Ada", "tok-123")
	require.NoError(t, err)

	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Verify your email address")
	assert.Contains(t, gotMsg, "Dear Ada,")
	// the trailing slash on the base URL must not double up
	assert.Contains(t, gotMsg, "https://app.example.com/api/auth/verify-email?token=tok-123")
	assert.Contains(t, gotMsg, "expire in 24 hours")
}

func TestSMTPNotifier_SendPasswordResetEmail(t *testing.T) {
	var gotMsg string

	n := newCapturingNotifier(func(_, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	})

	err := n.SendPasswordResetEmail(context.Background(), "ada@example.com", "Ada", "tok-456")
	require.NoError(t, err)

	assert.Contains(t, gotMsg, "Subject: Reset your password")
	assert.Contains(t, gotMsg, "https://app.example.com/reset-password?token=tok-456")
	assert.Contains(t, gotMsg, "expire in 1 hour")
}

func TestSMTPNotifier_Failures(t *testing.T) {
	t.Run("wraps transport errors", func(t *testing.T) {
		n := newCapturingNotifier(func(string, string, []string, []byte) error {
			return errors.New("connection refused")
		})

		err := n.SendVerificationEmail(context.Background(), "ada@example.com", "Ada", "tok")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
	})

	t.Run("honors a cancelled context", func(t *testing.T) {
		called := false
		n := newCapturingNotifier(func(string, string, []string, []byte) error {
			called = true
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := n.SendVerificationEmail(ctx, "ada@example.com", "Ada", "tok")
		assert.Error(t, err)
		assert.False(t, called)
	})
}
