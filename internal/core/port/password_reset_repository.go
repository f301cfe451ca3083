package port

import (
	"context"
	"time"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
)

// PasswordResetRepository is the ledger of outstanding OTP reset requests. It holds
// at most one request per user.
type PasswordResetRepository interface {
	// Replace deletes any request for req.UserID and stores req in its place.
	Replace(ctx context.Context, req domain.PasswordResetRequest) error
	GetByUserID(ctx context.Context, userID string) (*domain.PasswordResetRequest, error)
	// MarkUsed sets used_at on an unconsumed request. It returns repository.ErrNotFound
	// when the request is missing or already consumed.
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
