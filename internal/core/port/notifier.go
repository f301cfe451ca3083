package port

import "context"

// Notifier delivers an email message.
type Notifier interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
