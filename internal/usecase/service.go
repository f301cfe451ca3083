package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/logger"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
)

const defaultAppName = "Finance Tracker"

// runInTx uses tx when configured and otherwise calls fn directly.
func runInTx(ctx context.Context, tx port.Transactor, fn func(ctx context.Context) error) error {
	if tx == nil {
		return fn(ctx)
	}
	return tx.WithinTx(ctx, fn)
}

// weakPassword wraps a policy violation so it matches ErrWeakPassword and still
// exposes the *security.PasswordValidationError message.
func weakPassword(err error) error {
	return fmt.Errorf("%w: %w", ErrWeakPassword, err)
}

// WeakPasswordMessage returns the user-facing policy message carried by err.
func WeakPasswordMessage(err error) (string, bool) {
	if !errors.Is(err, ErrWeakPassword) {
		return "", false
	}
	var violation *security.PasswordValidationError
	if errors.As(err, &violation) && violation.Message != "" {
		return violation.Message, true
	}
	return "", false
}

func requestLogger(ctx context.Context, base *zap.Logger) *zap.Logger {
	return logger.WithContext(ctx, base)
}
