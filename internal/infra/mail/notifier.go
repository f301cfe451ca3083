package mail

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
)

// Driver names accepted by mail.driver.
const (
	DriverSMTP  = "smtp"
	DriverKafka = "kafka"
	DriverLog   = "log"
)

// ErrKafkaUnavailable is returned when the kafka driver is selected without a producer.
var ErrKafkaUnavailable = errors.New("mail driver kafka requires kafka.brokers")

// NewNotifier builds the notifier selected by cfg.Mail.Driver. producer may be nil
// unless the kafka driver is selected.
func NewNotifier(cfg *config.AppConfig, producer MessageSender, log *zap.Logger) (port.Notifier, error) {
	switch cfg.Mail.Driver {
	case DriverSMTP:
		return NewSMTPNotifier(cfg.Mail, log)
	case DriverKafka:
		if producer == nil {
			return nil, ErrKafkaUnavailable
		}
		return NewKafkaNotifier(producer, cfg.Kafka.MailTopic, log), nil
	case DriverLog, "":
		return NewLogNotifier(log, cfg.IsDevelopment()), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}
}
