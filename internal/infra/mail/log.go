package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
)

// LogNotifier writes messages to the log instead of sending them.
type LogNotifier struct {
	logger      *zap.Logger
	includeBody bool
}

// NewLogNotifier constructs a LogNotifier. includeBody logs the text body, which
// carries one-time codes, and must stay off outside development.
func NewLogNotifier(log *zap.Logger, includeBody bool) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{logger: log, includeBody: includeBody}
}

// Send logs the message.
func (n *LogNotifier) Send(ctx context.Context, to, subject, text, _ string) error {
	fields := []zap.Field{
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	}
	if n.includeBody {
		fields = append(fields, zap.String("text", text))
	}
	logger.WithContext(ctx, n.logger).Info("mail not sent: log driver", fields...)
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)
