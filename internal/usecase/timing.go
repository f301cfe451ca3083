package usecase

import (
	"sync"

	"github.com/Emmakaranja1/Finance-Tracker/internal/core/port"
)

const timingEqualizerSecret = "finance-tracker-timing-equalizer"

// timingEqualizer spends the same hashing work on a dead-end path as the real
// path would, so lookups that miss are not distinguishable by latency.
type timingEqualizer struct {
	once sync.Once
	hash string
}

// verify runs one hash verification of secret against a lazily built dummy hash.
func (e *timingEqualizer) verify(hasher port.PasswordHasher, secret string) {
	if hasher == nil {
		return
	}
	e.once.Do(func() {
		if hash, err := hasher.Hash(timingEqualizerSecret); err == nil {
			e.hash = hash
		}
	})
	if e.hash != "" {
		_, _ = hasher.Verify(secret, e.hash)
	}
}

// issue runs one hash computation, matching the cost of issuing a code.
func (e *timingEqualizer) issue(hasher port.PasswordHasher, secret string) {
	if hasher == nil {
		return
	}
	_, _ = hasher.Hash(secret)
}
