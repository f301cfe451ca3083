package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestProducer(t *testing.T) (*Producer, *fakeAsyncProducer) {
	t.Helper()
	async := newFakeAsyncProducer()
	return newProducer(async, config.KafkaSettings{TopicPrefix: "finance"}, zaptest.NewLogger(t)), async
}

func decodeEnvelope(t *testing.T, msg *sarama.ProducerMessage) map[string]any {
	t.Helper()
	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message value: %v", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return envelope
}

func TestPublishPasswordResetRequested(t *testing.T) {
	producer, async := newTestProducer(t)
	publisher := NewEventPublisher(producer, config.AppSettings{Name: "Finance Tracker", Env: "test"}, zaptest.NewLogger(t))

	requestedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	err := publisher.PublishPasswordResetRequested(context.Background(), domain.PasswordResetRequestedEvent{
		EventID:           "event-1",
		UserID:            "user-1",
		RequestID:         "reset-1",
		MaskedDestination: "jan***@example.com",
		RequestedAt:       requestedAt,
		ExpiresAt:         requestedAt.Add(10 * time.Minute),
		Delivered:         true,
	})
	if err != nil {
		t.Fatalf("PublishPasswordResetRequested returned error: %v", err)
	}

	msg := <-async.input
	if msg.Topic != "finance.user.password.reset_requested" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	key, _ := msg.Key.Encode()
	if string(key) != "user-1" {
		t.Fatalf("expected user key, got %q", key)
	}

	envelope := decodeEnvelope(t, msg)
	if envelope["event_id"] != "event-1" || envelope["event_type"] != "finance.user.password.reset_requested" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
	payload, ok := envelope["payload"].(map[string]any)
	if !ok {
		t.Fatalf("expected payload object, got %T", envelope["payload"])
	}
	if payload["masked_destination"] != "jan***@example.com" || payload["delivered"] != true {
		t.Fatalf("unexpected payload %+v", payload)
	}
	metadata := envelope["metadata"].(map[string]any)
	if metadata["service"] != "Finance Tracker" || metadata["environment"] != "test" {
		t.Fatalf("unexpected metadata %+v", metadata)
	}
}

func TestPublishUserRegisteredAndPasswordChangedTopics(t *testing.T) {
	producer, async := newTestProducer(t)
	publisher := NewEventPublisher(producer, config.AppSettings{Name: "Finance Tracker"}, nil)
	ctx := context.Background()

	if err := publisher.PublishUserRegistered(ctx, domain.UserRegisteredEvent{UserID: "user-1", Email: "a@x.com", Currency: "USD"}); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}
	if msg := <-async.input; msg.Topic != "finance.user.registered" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}

	if err := publisher.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{UserID: "user-1", Method: "otp_reset"}); err != nil {
		t.Fatalf("PublishPasswordChanged returned error: %v", err)
	}
	msg := <-async.input
	if msg.Topic != "finance.user.password.changed" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	if envelope := decodeEnvelope(t, msg); envelope["event_id"] == "" {
		t.Fatalf("expected generated event id")
	}
}

func TestProducerSendHonoursContext(t *testing.T) {
	producer, async := newTestProducer(t)
	// Fill the single slot so the next send blocks.
	async.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := producer.Send(ctx, "user.registered", "", []byte("{}")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProducerCloseRejectsSends(t *testing.T) {
	producer, _ := newTestProducer(t)

	if err := producer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := producer.Send(context.Background(), "user.registered", "", nil); !errors.Is(err, ErrProducerClosed) {
		t.Fatalf("expected ErrProducerClosed, got %v", err)
	}
}

func TestTopicNameIsIdempotent(t *testing.T) {
	producer, _ := newTestProducer(t)

	if got := producer.TopicName("finance.user.registered"); got != "finance.user.registered" {
		t.Fatalf("unexpected topic %q", got)
	}
	producer.cfg.TopicPrefix = ""
	if got := producer.TopicName("user.registered"); got != "user.registered" {
		t.Fatalf("unexpected topic %q", got)
	}
}

func TestStubPublisherMasksEmail(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := NewStubPublisher(zap.New(core))

	if err := publisher.PublishUserRegistered(context.Background(), domain.UserRegisteredEvent{UserID: "user-1", Email: "jane@example.com"}); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "jan***@example.com" || fields["event_type"] != EventUserRegistered {
		t.Fatalf("unexpected fields %+v", fields)
	}
}
