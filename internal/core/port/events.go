package port

import (
	"context"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
)

// EventPublisher emits account lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
