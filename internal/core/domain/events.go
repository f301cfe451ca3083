package domain

import "time"

// UserRegisteredEvent represents the payload for finance.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	Currency     string
	RegisteredAt time.Time
}

// PasswordResetRequestedEvent represents the payload for finance.user.password.reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID           string
	UserID            string
	RequestID         string
	MaskedDestination string
	RequestedAt       time.Time
	ExpiresAt         time.Time
	Delivered         bool
}

// PasswordChangedEvent represents the payload for finance.user.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Method    string
}
