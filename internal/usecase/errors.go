package usecase

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
)

var (
	// ErrInvalidInput indicates a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCurrency indicates the currency is not a three letter code.
	ErrInvalidCurrency = errors.New("invalid currency code")
	// ErrWeakPassword indicates the password does not satisfy the password policy.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrInvalidCredentials is returned for every failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidOrExpiredOTP is returned for every rejected OTP, whatever the reason.
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired otp")
	// ErrUnauthenticated indicates no session credential was presented.
	ErrUnauthenticated = errors.New("access token required")
	// ErrInvalidToken indicates the session credential is malformed, wrongly signed or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound indicates the authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Reasons an OTP is rejected. They never leave the package.
var (
	errResetIncomplete   = errors.New("reset request incomplete")
	errResetUnknownUser  = errors.New("no account for email")
	errResetMissing      = errors.New("no outstanding reset request")
	errResetCodeMismatch = errors.New("otp does not match")
)

var resetFailureReasons = []error{
	errResetIncomplete,
	errResetUnknownUser,
	errResetMissing,
	domain.ErrResetConsumed,
	domain.ErrResetExpired,
	errResetCodeMismatch,
}

// collapseResetFailure maps every OTP rejection reason to ErrInvalidOrExpiredOTP so
// callers cannot tell an unknown account from a wrong or stale code. Anything else
// (store outages, hashing faults) is returned unchanged.
func collapseResetFailure(log *zap.Logger, operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, reason := range resetFailureReasons {
		if errors.Is(err, reason) {
			log.Info("otp rejected",
				zap.String("operation", operation),
				zap.String("reason", reason.Error()),
			)
			return ErrInvalidOrExpiredOTP
		}
	}
	return err
}
