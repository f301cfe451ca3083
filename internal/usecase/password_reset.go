package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/telemetry"
	"github.com/Emmakaranja1/Finance-Tracker/internal/repository"
)

const (
	defaultOTPLength = 6
	defaultOTPTTL    = 10 * time.Minute

	passwordChangeMethodOTP = "otp_reset"
)

// PasswordResetService runs the forgot-password, verify-otp and reset-password flows.
type PasswordResetService struct {
	users    port.UserRepository
	resets   port.PasswordResetRepository
	tx       port.Transactor
	hasher   port.PasswordHasher
	policy   port.PasswordPolicyValidator
	notifier port.Notifier
	events   port.EventPublisher
	metrics  *telemetry.AuthMetrics
	logger   *zap.Logger
	now      func() time.Time

	appName   string
	otpLength int
	otpTTL    time.Duration

	timing timingEqualizer
}

// ResetPasswordInput carries the reset-password form.
type ResetPasswordInput struct {
	Email       string
	OTP         string
	NewPassword string
}

// NewPasswordResetService constructs a PasswordResetService. A nil cfg uses the defaults.
func NewPasswordResetService(
	cfg *config.AppConfig,
	users port.UserRepository,
	resets port.PasswordResetRepository,
	tx port.Transactor,
	hasher port.PasswordHasher,
	policy port.PasswordPolicyValidator,
	notifier port.Notifier,
	events port.EventPublisher,
	logger *zap.Logger,
) *PasswordResetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = security.DefaultPasswordPolicy(0, 0)
	}

	s := &PasswordResetService{
		users:     users,
		resets:    resets,
		tx:        tx,
		hasher:    hasher,
		policy:    policy,
		notifier:  notifier,
		events:    events,
		logger:    logger,
		now:       time.Now,
		appName:   defaultAppName,
		otpLength: defaultOTPLength,
		otpTTL:    defaultOTPTTL,
	}
	if cfg != nil {
		if cfg.App.Name != "" {
			s.appName = cfg.App.Name
		}
		if cfg.OTP.Length > 0 {
			s.otpLength = cfg.OTP.Length
		}
		if cfg.OTP.TTL > 0 {
			s.otpTTL = cfg.OTP.TTL
		}
	}
	return s
}

// WithMetrics attaches auth event counters.
func (s *PasswordResetService) WithMetrics(metrics *telemetry.AuthMetrics) *PasswordResetService {
	s.metrics = metrics
	return s
}

// WithClock overrides the time source.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	if now != nil {
		s.now = now
	}
	return s
}

// ForgotPassword issues a fresh OTP to the account behind email, replacing any previous
// one. Unknown or empty emails are a silent no-op. A delivery failure removes the new
// request and is not reported to the caller; only store failures are.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) (err error) {
	ctx, span := startSpan(ctx, "PasswordResetService.ForgotPassword")
	defer func() { endSpan(span, err) }()

	log := requestLogger(ctx, s.logger).With(zap.String("email", logger.MaskEmail(email)))

	if strings.TrimSpace(email) == "" {
		s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeRejected)
		return nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.timing.issue(s.hasher, timingEqualizerSecret)
			s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeRejected)
			log.Info("password reset requested for unknown account")
			return nil
		}
		s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeError)
		return fmt.Errorf("lookup user: %w", err)
	}

	req, code, err := s.issueReset(ctx, user.ID)
	if err != nil {
		s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeError)
		return err
	}

	delivered := s.deliver(ctx, log, user.Email, code, req)
	s.publishResetRequested(ctx, user, req, delivered)

	if delivered {
		s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeSuccess)
		log.Info("password reset otp sent", zap.String("user_id", user.ID), zap.Time("expires_at", req.ExpiresAt))
	} else {
		s.metrics.Observe(telemetry.EventForgotPassword, telemetry.OutcomeError)
	}
	return nil
}

func (s *PasswordResetService) issueReset(ctx context.Context, userID string) (domain.PasswordResetRequest, string, error) {
	code, err := security.GenerateNumericCode(s.otpLength)
	if err != nil {
		return domain.PasswordResetRequest{}, "", fmt.Errorf("generate otp: %w", err)
	}

	otpHash, err := s.hasher.Hash(code)
	if err != nil {
		return domain.PasswordResetRequest{}, "", fmt.Errorf("hash otp: %w", err)
	}

	now := s.now().UTC()
	req := domain.PasswordResetRequest{
		ID:        uuid.NewString(),
		UserID:    userID,
		OTPHash:   otpHash,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.resets.Replace(ctx, req); err != nil {
		return domain.PasswordResetRequest{}, "", fmt.Errorf("store password reset: %w", err)
	}

	return req, code, nil
}

// deliver sends the OTP email. On failure the request is deleted so no undeliverable
// code stays valid.
func (s *PasswordResetService) deliver(ctx context.Context, log *zap.Logger, to, code string, req domain.PasswordResetRequest) bool {
	err := s.send(ctx, to, code)
	if err == nil {
		return true
	}

	log.Error("password reset otp delivery failed", zap.String("user_id", req.UserID), zap.Error(err))
	if delErr := s.resets.Delete(ctx, req.ID); delErr != nil {
		log.Error("discard undelivered password reset failed",
			zap.String("request_id", req.ID),
			zap.Error(delErr),
		)
	}
	return false
}

func (s *PasswordResetService) send(ctx context.Context, to, code string) error {
	if s.notifier == nil {
		return errors.New("notifier not configured")
	}
	msg, err := RenderResetEmail(s.appName, code, s.otpTTL)
	if err != nil {
		return err
	}
	return s.notifier.Send(ctx, to, msg.Subject, msg.Text, msg.HTML)
}

// VerifyOTP reports whether code is the live OTP for email without consuming it.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) (err error) {
	ctx, span := startSpan(ctx, "PasswordResetService.VerifyOTP")
	defer func() { endSpan(span, err) }()

	log := requestLogger(ctx, s.logger).With(zap.String("email", logger.MaskEmail(email)))

	if email == "" || code == "" {
		err = errResetIncomplete
	} else {
		_, _, err = s.checkReset(ctx, email, code)
	}
	err = collapseResetFailure(log, "verify_otp", err)
	s.observe(telemetry.EventVerifyOTP, err)
	return err
}

// ResetPassword replaces the account password when code is the live OTP for email, and
// consumes the OTP.
func (s *PasswordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) (err error) {
	ctx, span := startSpan(ctx, "PasswordResetService.ResetPassword")
	defer func() { endSpan(span, err) }()

	log := requestLogger(ctx, s.logger).With(zap.String("email", logger.MaskEmail(input.Email)))

	err = collapseResetFailure(log, "reset_password", s.resetPassword(ctx, input))
	s.observe(telemetry.EventResetPassword, err)
	if err != nil && !errors.Is(err, ErrInvalidOrExpiredOTP) && !errors.Is(err, ErrWeakPassword) {
		log.Error("password reset failed", zap.Error(err))
	}
	return err
}

func (s *PasswordResetService) resetPassword(ctx context.Context, input ResetPasswordInput) error {
	if input.Email == "" || input.OTP == "" || input.NewPassword == "" {
		return errResetIncomplete
	}
	if err := s.policy.Validate(input.NewPassword, input.Email); err != nil {
		return weakPassword(err)
	}

	user, req, err := s.checkReset(ctx, input.Email, input.OTP)
	if err != nil {
		return err
	}

	consumed, err := req.Consume(s.now().UTC())
	if err != nil {
		return err
	}
	changedAt := *consumed.UsedAt

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = runInTx(ctx, s.tx, func(ctx context.Context) error {
		if err := s.users.UpdatePassword(ctx, user.ID, passwordHash, changedAt); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return errResetUnknownUser
			}
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.resets.MarkUsed(ctx, req.ID, changedAt); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrResetConsumed
			}
			return fmt.Errorf("consume password reset: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishPasswordChanged(ctx, user.ID, changedAt)
	requestLogger(ctx, s.logger).Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// checkReset returns the account and its live request when code matches, or the
// internal reason it does not.
func (s *PasswordResetService) checkReset(ctx context.Context, email, code string) (*domain.User, *domain.PasswordResetRequest, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.timing.verify(s.hasher, code)
			return nil, nil, errResetUnknownUser
		}
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}

	req, err := s.resets.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.timing.verify(s.hasher, code)
			return nil, nil, errResetMissing
		}
		return nil, nil, fmt.Errorf("lookup password reset: %w", err)
	}

	if err := req.CheckUsable(s.now().UTC()); err != nil {
		s.timing.verify(s.hasher, code)
		return nil, nil, err
	}

	ok, err := s.hasher.Verify(code, req.OTPHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return nil, nil, errResetCodeMismatch
	}

	return user, req, nil
}

func (s *PasswordResetService) observe(event string, err error) {
	switch {
	case err == nil:
		s.metrics.Observe(event, telemetry.OutcomeSuccess)
	case errors.Is(err, ErrInvalidOrExpiredOTP), errors.Is(err, ErrWeakPassword):
		s.metrics.Observe(event, telemetry.OutcomeRejected)
	default:
		s.metrics.Observe(event, telemetry.OutcomeError)
	}
}

func (s *PasswordResetService) publishResetRequested(ctx context.Context, user *domain.User, req domain.PasswordResetRequest, delivered bool) {
	if s.events == nil {
		return
	}
	event := domain.PasswordResetRequestedEvent{
		EventID:           uuid.NewString(),
		UserID:            user.ID,
		RequestID:         req.ID,
		MaskedDestination: logger.MaskEmail(user.Email),
		RequestedAt:       req.CreatedAt,
		ExpiresAt:         req.ExpiresAt,
		Delivered:         delivered,
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		requestLogger(ctx, s.logger).Warn("publish password reset requested event failed", zap.Error(err))
	}
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, userID string, changedAt time.Time) {
	if s.events == nil {
		return
	}
	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		ChangedAt: changedAt,
		Method:    passwordChangeMethodOTP,
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		requestLogger(ctx, s.logger).Warn("publish password changed event failed", zap.Error(err))
	}
}
