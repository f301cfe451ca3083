package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/telemetry"
	"github.com/Emmakaranja1/Finance-Tracker/internal/repository"
)

// AuthService handles login and session resolution.
type AuthService struct {
	users   port.UserRepository
	hasher  port.PasswordHasher
	tokens  port.SessionTokenIssuer
	metrics *telemetry.AuthMetrics
	logger  *zap.Logger
	now     func() time.Time

	timing timingEqualizer
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.PublicUser
}

// NewAuthService constructs an AuthService.
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, tokens port.SessionTokenIssuer, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// WithMetrics attaches auth event counters.
func (s *AuthService) WithMetrics(metrics *telemetry.AuthMetrics) *AuthService {
	s.metrics = metrics
	return s
}

// WithClock overrides the time source used when issuing tokens.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// Login verifies credentials and issues a session token. Every credential failure
// returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (result *LoginResult, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	log := requestLogger(ctx, s.logger).With(zap.String("email", logger.MaskEmail(input.Email)))

	result, err = s.login(ctx, input)
	switch {
	case err == nil:
		s.metrics.Observe(telemetry.EventLogin, telemetry.OutcomeSuccess)
		log.Info("login succeeded", zap.String("user_id", result.User.ID))
	case errors.Is(err, ErrInvalidCredentials):
		s.metrics.Observe(telemetry.EventLogin, telemetry.OutcomeRejected)
		log.Info("login rejected")
	default:
		s.metrics.Observe(telemetry.EventLogin, telemetry.OutcomeError)
		log.Error("login failed", zap.Error(err))
	}
	return result, err
}

func (s *AuthService) login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.timing.verify(s.hasher, input.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user.Public()}, nil
}

// CurrentUser resolves the account behind a session token.
func (s *AuthService) CurrentUser(ctx context.Context, rawToken string) (user *domain.PublicUser, err error) {
	ctx, span := startSpan(ctx, "AuthService.CurrentUser")
	defer func() { endSpan(span, err) }()

	user, err = s.currentUser(ctx, rawToken)
	switch {
	case err == nil:
		s.metrics.Observe(telemetry.EventCurrentUser, telemetry.OutcomeSuccess)
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUserNotFound):
		s.metrics.Observe(telemetry.EventCurrentUser, telemetry.OutcomeRejected)
		requestLogger(ctx, s.logger).Debug("session rejected", zap.Error(err))
	default:
		s.metrics.Observe(telemetry.EventCurrentUser, telemetry.OutcomeError)
		requestLogger(ctx, s.logger).Error("resolve current user failed", zap.Error(err))
	}
	return user, err
}

func (s *AuthService) currentUser(ctx context.Context, rawToken string) (*domain.PublicUser, error) {
	if rawToken == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	public := user.Public()
	return &public, nil
}
