package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
)

// GenerateNumericCode returns a uniformly random decimal code of exactly length
// digits, drawn from [10^(length-1), 10^length-1] so the first digit is never zero.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 || length > 18 {
		return "", fmt.Errorf("code length must be between 1 and 18, got %d", length)
	}

	lower := int64(1)
	for i := 1; i < length; i++ {
		lower *= 10
	}
	upper := lower*10 - 1

	n, err := rand.Int(rand.Reader, big.NewInt(upper-lower+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	return strconv.FormatInt(lower+n.Int64(), 10), nil
}

// HashToken calculates a SHA-256 hash of the provided value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
