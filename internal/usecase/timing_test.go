package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/config"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
)

type countingHasher struct {
	inner port.PasswordHasher

	mu       sync.Mutex
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(secret string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.inner.Hash(secret)
}

func (h *countingHasher) Verify(secret, encoded string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.inner.Verify(secret, encoded)
}

func (h *countingHasher) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes, h.verifies
}

func (h *countingHasher) reset() {
	h.mu.Lock()
	h.hashes, h.verifies = 0, 0
	h.mu.Unlock()
}

func newCountingResetService(t *testing.T) (*PasswordResetService, *countingHasher, *memoryUserRepo, *clock) {
	t.Helper()

	hasher := &countingHasher{inner: testHasher(t)}
	users := newMemoryUserRepo()
	if err := users.Create(context.Background(), domain.User{ID: "user-1", Email: "jane@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	clk := newClock()
	cfg := &config.AppConfig{OTP: config.OTPSettings{Length: 6, TTL: 10 * time.Minute}}
	svc := NewPasswordResetService(cfg, users, newMemoryResetRepo(), &countingTx{}, hasher,
		security.DefaultPasswordPolicy(8, 0), &capturingNotifier{}, &recordingPublisher{}, zaptest.NewLogger(t)).
		WithClock(clk.Now)
	return svc, hasher, users, clk
}

func TestForgotPasswordUnknownEmailHashesLikeKnownEmail(t *testing.T) {
	svc, hasher, _, _ := newCountingResetService(t)
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "jane@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	knownHashes, _ := hasher.counts()

	hasher.reset()
	if err := svc.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}
	unknownHashes, _ := hasher.counts()

	if knownHashes != 1 || unknownHashes != knownHashes {
		t.Fatalf("expected one hash on both paths, got known=%d unknown=%d", knownHashes, unknownHashes)
	}
}

func TestVerifyOTPDeadEndsStillVerifyHash(t *testing.T) {
	svc, hasher, users, clk := newCountingResetService(t)
	ctx := context.Background()

	if err := users.Create(ctx, domain.User{ID: "user-2", Email: "norequest@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "jane@example.com"); err != nil {
		t.Fatalf("ForgotPassword returned error: %v", err)
	}

	cases := []struct {
		name    string
		email   string
		advance time.Duration
	}{
		{name: "unknown account", email: "nobody@example.com"},
		{name: "no pending request", email: "norequest@example.com"},
		{name: "expired request", email: "jane@example.com", advance: 11 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk.Advance(tc.advance)
			hasher.reset()

			if err := svc.VerifyOTP(ctx, tc.email, "123456"); !errors.Is(err, ErrInvalidOrExpiredOTP) {
				t.Fatalf("expected ErrInvalidOrExpiredOTP, got %v", err)
			}
			if _, verifies := hasher.counts(); verifies != 1 {
				t.Fatalf("expected exactly one hash verification, got %d", verifies)
			}
		})
	}
}

func TestLoginUnknownEmailVerifiesDummyHash(t *testing.T) {
	hasher := &countingHasher{inner: testHasher(t)}
	tokens, err := security.NewSessionTokenManager("test-secret", time.Hour, "finance-tracker")
	if err != nil {
		t.Fatalf("NewSessionTokenManager returned error: %v", err)
	}
	svc := NewAuthService(newMemoryUserRepo(), hasher, tokens, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "whatever-pass"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	hashes, verifies := hasher.counts()
	if hashes != 1 || verifies != 2 {
		t.Fatalf("expected dummy hash built once and verified per attempt, got hashes=%d verifies=%d", hashes, verifies)
	}
}
