// Package email provides the outbound email sender used by the worker
// to deliver notification digests.
package email

import "context"

// Sender delivers a single email.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error
}

// NopSender discards all email. Used when no provider is configured.
type NopSender struct{}

// SendEmail drops the message.
func (NopSender) SendEmail(_ context.Context, _, _, _, _ string) error {
	return nil
}
