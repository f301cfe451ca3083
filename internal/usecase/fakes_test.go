package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/domain"
	"github.com/Emmakaranja1/Finance-Tracker/internal/infra/security"
	"github.com/Emmakaranja1/Finance-Tracker/internal/repository"
)

func testHasher(t *testing.T) *security.Argon2Hasher {
	t.Helper()
	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}
	return hasher
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryUserRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.User
	lookupErr error
	createErr error
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byID: map[string]domain.User{}}
}

func (r *memoryUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	r.byID[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	for _, user := range r.byID {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = changedAt
	r.byID[id] = user
	return nil
}

func (r *memoryUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

type memoryResetRepo struct {
	mu         sync.Mutex
	byUser     map[string]domain.PasswordResetRequest
	replaceErr error
	deleted    []string
}

func newMemoryResetRepo() *memoryResetRepo {
	return &memoryResetRepo{byUser: map[string]domain.PasswordResetRequest{}}
}

func (r *memoryResetRepo) Replace(_ context.Context, req domain.PasswordResetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.byUser[req.UserID] = req
	return nil
}

func (r *memoryResetRepo) GetByUserID(_ context.Context, userID string) (*domain.PasswordResetRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *memoryResetRepo) MarkUsed(_ context.Context, id string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, req := range r.byUser {
		if req.ID == id && req.UsedAt == nil {
			at := usedAt
			req.UsedAt = &at
			r.byUser[userID] = req
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memoryResetRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	for userID, req := range r.byUser {
		if req.ID == id {
			delete(r.byUser, userID)
		}
	}
	return nil
}

func (r *memoryResetRepo) get(userID string) (domain.PasswordResetRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byUser[userID]
	return req, ok
}

type recordingProvisioner struct {
	provisioned []string
	err         error
}

func (p *recordingProvisioner) ProvisionDefaults(_ context.Context, user domain.User) error {
	if p.err != nil {
		return p.err
	}
	p.provisioned = append(p.provisioned, user.ID)
	return nil
}

type countingTx struct {
	mu    sync.Mutex
	calls int
}

func (tx *countingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.mu.Lock()
	tx.calls++
	tx.mu.Unlock()
	return fn(ctx)
}

type sentMessage struct {
	To, Subject, Text, HTML string
}

type capturingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *capturingNotifier) Send(_ context.Context, to, subject, text, html string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{To: to, Subject: subject, Text: text, HTML: html})
	return nil
}

var otpPattern = regexp.MustCompile(`OTP is (\d+)\.`)

func (n *capturingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("no message sent")
	}
	match := otpPattern.FindStringSubmatch(n.sent[len(n.sent)-1].Text)
	if len(match) != 2 {
		t.Fatalf("no otp in message %q", n.sent[len(n.sent)-1].Text)
	}
	return match[1]
}

func (n *capturingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	requested  []domain.PasswordResetRequestedEvent
	changed    []domain.PasswordChangedEvent
	err        error
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return p.err
}

func (p *recordingPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requested = append(p.requested, event)
	return p.err
}

func (p *recordingPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, event)
	return p.err
}

var errStoreDown = errors.New("store unavailable")

func wrapConflict() error {
	return fmt.Errorf("insert user: %w", repository.ErrConflict)
}
