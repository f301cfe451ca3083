package domain

import (
	"errors"
	"time"
)

var (
	// ErrResetConsumed indicates the reset request was already used to change a password.
	ErrResetConsumed = errors.New("password reset already consumed")
	// ErrResetExpired indicates the reset request is past its expiry.
	ErrResetExpired = errors.New("password reset expired")
)

// PasswordResetRequest is the single outstanding OTP reset attempt for a user.
// OTPHash is a salted one-way hash; the raw code is never stored.
type PasswordResetRequest struct {
	ID        string
	UserID    string
	OTPHash   string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// ResetState is the lifecycle state of a reset request: ResetActive or ResetConsumed.
type ResetState interface {
	isResetState()
}

// ResetActive is an unconsumed request. It may still be expired by the clock.
type ResetActive struct {
	ExpiresAt time.Time
}

// ResetConsumed is a request that already changed a password.
type ResetConsumed struct {
	UsedAt time.Time
}

func (ResetActive) isResetState()   {}
func (ResetConsumed) isResetState() {}

// Expired reports whether the active request can no longer be used at now.
// Expiry is strict: a request expiring exactly at now is expired.
func (s ResetActive) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// State derives the lifecycle state from the persisted row.
func (r PasswordResetRequest) State() ResetState {
	if r.UsedAt != nil {
		return ResetConsumed{UsedAt: *r.UsedAt}
	}
	return ResetActive{ExpiresAt: r.ExpiresAt}
}

// CheckUsable returns nil when the request may be verified or consumed at now,
// otherwise the reason it may not.
func (r PasswordResetRequest) CheckUsable(now time.Time) error {
	switch state := r.State().(type) {
	case ResetConsumed:
		return ErrResetConsumed
	case ResetActive:
		if state.Expired(now) {
			return ErrResetExpired
		}
		return nil
	default:
		return ErrResetConsumed
	}
}

// Consume transitions an active request to consumed. It is the only legal transition.
func (r PasswordResetRequest) Consume(now time.Time) (PasswordResetRequest, error) {
	if err := r.CheckUsable(now); err != nil {
		return r, err
	}
	usedAt := now
	r.UsedAt = &usedAt
	return r, nil
}
