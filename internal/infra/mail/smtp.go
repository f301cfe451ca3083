package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
)

const smtpTimeout = 15 * time.Second

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPNotifier delivers mail through an SMTP relay.
type SMTPNotifier struct {
	sender smtpSender
	from   string
	logger *zap.Logger
}

// NewSMTPNotifier builds an SMTP client from cfg. Secure selects implicit TLS;
// otherwise STARTTLS is used when the server offers it.
func NewSMTPNotifier(cfg config.MailSettings, log *zap.Logger) (*SMTPNotifier, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(smtpTimeout),
	}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return newSMTPNotifier(client, cfg.From, log), nil
}

func newSMTPNotifier(sender smtpSender, from string, log *zap.Logger) *SMTPNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &SMTPNotifier{sender: sender, from: from, logger: log}
}

// Send delivers a multipart/alternative message with text and html bodies.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, text, html string) error {
	msg, err := n.buildMessage(to, subject, text, html)
	if err != nil {
		return err
	}

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	logger.WithContext(ctx, n.logger).Info("mail sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)
	return nil
}

func (n *SMTPNotifier) buildMessage(to, subject, text, html string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextPlain, text)
	if html != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, html)
	}
	return msg, nil
}

var _ port.Notifier = (*SMTPNotifier)(nil)
