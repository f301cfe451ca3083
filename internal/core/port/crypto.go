package port

import "time"

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret string, encoded string) (bool, error)
}

// PasswordPolicyValidator enforces password requirements.
type PasswordPolicyValidator interface {
	Validate(password string, userInputs ...string) error
}

// SessionClaims is the identity carried by a verified session credential.
type SessionClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionTokenIssuer issues and verifies signed session credentials.
type SessionTokenIssuer interface {
	Issue(userID string, now time.Time) (token string, expiresAt time.Time, err error)
	Parse(token string) (*SessionClaims, error)
}
