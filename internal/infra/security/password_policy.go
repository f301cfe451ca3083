package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
)

const defaultMinPasswordLength = 8

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password. userInputs are account attributes (such as the
// email) that make a password easier to guess.
type PasswordRule func(password string, userInputs []string) error

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return func(password string, _ []string) error {
		if len(password) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("Password must be at least %d characters long.", min),
			}
		}
		return nil
	}
}

// StrengthRule enforces a minimum zxcvbn score. A score of zero disables the rule.
func StrengthRule(minScore int) PasswordRule {
	if minScore > 4 {
		minScore = 4
	}
	return func(password string, userInputs []string) error {
		if minScore <= 0 {
			return nil
		}
		if zxcvbn.PasswordStrength(password, userInputs).Score >= minScore {
			return nil
		}
		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "Password is too easy to guess; choose a more complex value.",
		}
	}
}

// PasswordPolicy applies a sequence of password rules and reports the first violation.
type PasswordPolicy struct {
	rules []PasswordRule
}

// NewPasswordPolicy builds a policy from explicit rules.
func NewPasswordPolicy(rules ...PasswordRule) *PasswordPolicy {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordPolicy{rules: copied}
}

// DefaultPasswordPolicy enforces minLength (never below 8) and, when
// minStrengthScore is positive, a zxcvbn score floor.
func DefaultPasswordPolicy(minLength, minStrengthScore int) *PasswordPolicy {
	if minLength < defaultMinPasswordLength {
		minLength = defaultMinPasswordLength
	}
	return NewPasswordPolicy(MinLengthRule(minLength), StrengthRule(minStrengthScore))
}

// Validate runs every rule in order.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if p == nil {
		return fmt.Errorf("password policy not configured")
	}
	for _, rule := range p.rules {
		if err := rule(password, userInputs); err != nil {
			return err
		}
	}
	return nil
}

var _ port.PasswordPolicyValidator = (*PasswordPolicy)(nil)
