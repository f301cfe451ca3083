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
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/telemetry"
	"github.com/Emmakaranja1/Finance-Tracker/internal/repository"
)

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	users       port.UserRepository
	provisioner port.AccountProvisioner
	tx          port.Transactor
	hasher      port.PasswordHasher
	policy      port.PasswordPolicyValidator
	events      port.EventPublisher
	metrics     *telemetry.AuthMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// SignupInput carries the signup form.
type SignupInput struct {
	Email    string
	Password string
	FullName string
	Currency string
}

// SignupResult describes the created account.
type SignupResult struct {
	User domain.PublicUser
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	users port.UserRepository,
	provisioner port.AccountProvisioner,
	tx port.Transactor,
	hasher port.PasswordHasher,
	policy port.PasswordPolicyValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		users:       users,
		provisioner: provisioner,
		tx:          tx,
		hasher:      hasher,
		policy:      policy,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

// WithMetrics attaches auth event counters.
func (s *RegistrationService) WithMetrics(metrics *telemetry.AuthMetrics) *RegistrationService {
	s.metrics = metrics
	return s
}

// WithClock overrides the time source.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// Signup creates an account together with its default wallet and starter categories.
func (s *RegistrationService) Signup(ctx context.Context, input SignupInput) (result *SignupResult, err error) {
	ctx, span := startSpan(ctx, "RegistrationService.Signup")
	defer func() { endSpan(span, err) }()

	log := requestLogger(ctx, s.logger).With(zap.String("email", logger.MaskEmail(input.Email)))

	result, err = s.signup(ctx, input)
	switch {
	case err == nil:
		s.metrics.Observe(telemetry.EventSignup, telemetry.OutcomeSuccess)
		log.Info("user registered", zap.String("user_id", result.User.ID))
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidCurrency), errors.Is(err, ErrInvalidInput):
		s.metrics.Observe(telemetry.EventSignup, telemetry.OutcomeRejected)
		log.Info("signup rejected", zap.Error(err))
	default:
		s.metrics.Observe(telemetry.EventSignup, telemetry.OutcomeError)
		log.Error("signup failed", zap.Error(err))
	}
	return result, err
}

func (s *RegistrationService) signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" || strings.TrimSpace(input.FullName) == "" {
		return nil, fmt.Errorf("%w: email, password and fullName are required", ErrInvalidInput)
	}

	if s.policy != nil {
		if err := s.policy.Validate(input.Password, input.Email, input.FullName); err != nil {
			return nil, weakPassword(err)
		}
	}

	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(input.FullName),
		Currency:     currency,
		Theme:        domain.DefaultTheme,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = runInTx(ctx, s.tx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if s.provisioner == nil {
			return nil
		}
		if err := s.provisioner.ProvisionDefaults(ctx, user); err != nil {
			return fmt.Errorf("provision defaults: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, user)

	return &SignupResult{User: user.Public()}, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}
	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		Currency:     user.Currency,
		RegisteredAt: user.CreatedAt,
	}
	if err := s.events.PublishUserRegistered(ctx, event); err != nil {
		requestLogger(ctx, s.logger).Warn("publish user registered event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

// normalizeCurrency upper-cases code, defaults it to USD and requires three ASCII letters.
func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}
	return code, nil
}
