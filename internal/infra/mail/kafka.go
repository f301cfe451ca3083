package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
)

// MessageSender is satisfied by *kafka.Producer.
type MessageSender interface {
	Send(ctx context.Context, name string, key string, value []byte) error
}

type mailRequest struct {
	MessageID   string    `json:"message_id"`
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	Text        string    `json:"text"`
	HTML        string    `json:"html,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// KafkaNotifier hands messages to a mail relay service through a Kafka topic.
type KafkaNotifier struct {
	producer MessageSender
	topic    string
	logger   *zap.Logger
	now      func() time.Time
}

// NewKafkaNotifier publishes mail requests on topic using producer.
func NewKafkaNotifier(producer MessageSender, topic string, log *zap.Logger) *KafkaNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaNotifier{producer: producer, topic: topic, logger: log, now: time.Now}
}

// Send enqueues the message. A nil error means the request was accepted by the
// producer, not that it was delivered.
func (n *KafkaNotifier) Send(ctx context.Context, to, subject, text, html string) error {
	req := mailRequest{
		MessageID:   uuid.NewString(),
		To:          to,
		Subject:     subject,
		Text:        text,
		HTML:        html,
		RequestedAt: n.now().UTC(),
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	if err := n.producer.Send(ctx, n.topic, to, payload); err != nil {
		return fmt.Errorf("enqueue mail request: %w", err)
	}

	logger.WithContext(ctx, n.logger).Info("mail request enqueued",
		zap.String("message_id", req.MessageID),
		zap.String("to", logger.MaskEmail(to)),
	)
	return nil
}

var _ port.Notifier = (*KafkaNotifier)(nil)
