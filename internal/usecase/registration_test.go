package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
)

type registrationFixture struct {
	svc         *RegistrationService
	users       *memoryUserRepo
	provisioner *recordingProvisioner
	tx          *countingTx
	events      *recordingPublisher
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := &registrationFixture{
		users:       newMemoryUserRepo(),
		provisioner: &recordingProvisioner{},
		tx:          &countingTx{},
		events:      &recordingPublisher{},
	}
	f.svc = NewRegistrationService(f.users, f.provisioner, f.tx, testHasher(t), security.DefaultPasswordPolicy(8, 0), f.events, zaptest.NewLogger(t))
	return f
}

func TestSignupCreatesAccountWithDefaults(t *testing.T) {
	f := newRegistrationFixture(t)

	result, err := f.svc.Signup(context.Background(), SignupInput{
		Email:    "jane@example.com",
		Password: "correct-horse",
		FullName: "Jane Doe",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if result.User.Currency != domain.DefaultCurrency {
		t.Fatalf("expected default currency USD, got %q", result.User.Currency)
	}
	if result.User.Theme != domain.DefaultTheme {
		t.Fatalf("expected default theme, got %q", result.User.Theme)
	}

	stored, err := f.users.GetByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "correct-horse" || stored.PasswordHash == "" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
	if len(f.provisioner.provisioned) != 1 || f.provisioner.provisioned[0] != stored.ID {
		t.Fatalf("expected defaults provisioned for %s, got %v", stored.ID, f.provisioner.provisioned)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if len(f.events.registered) != 1 || f.events.registered[0].UserID != stored.ID {
		t.Fatalf("expected registered event, got %+v", f.events.registered)
	}
}

func TestSignupTwiceConflicts(t *testing.T) {
	f := newRegistrationFixture(t)
	input := SignupInput{Email: "jane@example.com", Password: "correct-horse", FullName: "Jane"}

	if _, err := f.svc.Signup(context.Background(), input); err != nil {
		t.Fatalf("first Signup returned error: %v", err)
	}
	if _, err := f.svc.Signup(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupMapsInsertConflict(t *testing.T) {
	f := newRegistrationFixture(t)
	// Another request won the race between lookup and insert.
	f.users.createErr = wrapConflict()

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "correct-horse", FullName: "A"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name  string
		input SignupInput
		want  error
	}{
		{name: "missing email", input: SignupInput{Password: "correct-horse", FullName: "A"}, want: ErrInvalidInput},
		{name: "missing name", input: SignupInput{Email: "a@x.com", Password: "correct-horse"}, want: ErrInvalidInput},
		{name: "short password", input: SignupInput{Email: "a@x.com", Password: "short", FullName: "A"}, want: ErrWeakPassword},
		{name: "bad currency", input: SignupInput{Email: "a@x.com", Password: "correct-horse", FullName: "A", Currency: "US1"}, want: ErrInvalidCurrency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRegistrationFixture(t)
			_, err := f.svc.Signup(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSignupWeakPasswordCarriesPolicyMessage(t *testing.T) {
	f := newRegistrationFixture(t)

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "short", FullName: "A"})
	msg, ok := WeakPasswordMessage(err)
	if !ok || msg != "Password must be at least 8 characters long." {
		t.Fatalf("unexpected weak password message %q (ok=%v)", msg, ok)
	}
}

func TestSignupNormalizesCurrency(t *testing.T) {
	f := newRegistrationFixture(t)

	result, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "correct-horse", FullName: "A", Currency: " kes "})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if result.User.Currency != "KES" {
		t.Fatalf("expected KES, got %q", result.User.Currency)
	}
}

func TestSignupProvisioningFailureIsInternal(t *testing.T) {
	f := newRegistrationFixture(t)
	f.provisioner.err = errStoreDown

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "correct-horse", FullName: "A"})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(f.events.registered) != 0 {
		t.Fatalf("no event expected on failure")
	}
}

func TestSignupIgnoresPublisherFailure(t *testing.T) {
	f := newRegistrationFixture(t)
	f.events.err = errors.New("broker down")

	if _, err := f.svc.Signup(context.Background(), SignupInput{Email: "a@x.com", Password: "correct-horse", FullName: "A"}); err != nil {
		t.Fatalf("expected signup to succeed despite publisher failure, got %v", err)
	}
}
