package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(ctx context.Context, eventType, userID string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now()
	}
	fields = append([]zap.Field{
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
	}, fields...)
	logger.WithContext(ctx, p.logger).Info("event published", fields...)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(ctx, EventUserRegistered, event.UserID, event.RegisteredAt,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.String("currency", event.Currency),
	)
	return nil
}

// PublishPasswordResetRequested logs user.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	p.logEvent(ctx, EventPasswordResetRequested, event.UserID, event.RequestedAt,
		zap.String("request_id", event.RequestID),
		zap.String("destination", event.MaskedDestination),
		zap.Time("expires_at", event.ExpiresAt),
		zap.Bool("delivered", event.Delivered),
	)
	return nil
}

// PublishPasswordChanged logs user.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent(ctx, EventPasswordChanged, event.UserID, event.ChangedAt,
		zap.String("method", event.Method),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
