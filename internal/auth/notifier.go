package auth

import "context"

// Notifier delivers the verification and reset emails. Delivery is
// best-effort: the orchestrator invokes it after the account mutation
// commits and a failure is logged, never rolled back.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, firstName, token string) error
	SendPasswordResetEmail(ctx context.Context, email, firstName, token string) error
}

type noopNotifier struct{}

func (noopNotifier) SendVerificationEmail(context.Context, string, string, string) error {
	return nil
}

func (noopNotifier) SendPasswordResetEmail(context.Context, string, string, string) error {
	return nil
}
