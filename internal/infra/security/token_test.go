package security

import (
	"strconv"
	"testing"
)

func TestGenerateNumericCodeRange(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code, err := GenerateNumericCode(6)
		if err != nil {
			t.Fatalf("GenerateNumericCode returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		value, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric: %v", code, err)
		}
		if value < 100000 || value > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", value)
		}
	}
}

func TestGenerateNumericCodeOtherLengths(t *testing.T) {
	for _, length := range []int{1, 4, 8, 18} {
		code, err := GenerateNumericCode(length)
		if err != nil {
			t.Fatalf("GenerateNumericCode(%d) returned error: %v", length, err)
		}
		if len(code) != length {
			t.Fatalf("expected %d digits, got %q", length, code)
		}
		if code[0] == '0' {
			t.Fatalf("leading digit must not be zero: %q", code)
		}
	}
}

func TestGenerateNumericCodeRejectsInvalidLength(t *testing.T) {
	if _, err := GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := GenerateNumericCode(19); err == nil {
		t.Fatal("expected error for overflowing length")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("a@x.com") != HashToken("a@x.com") {
		t.Fatal("expected deterministic digest")
	}
	if len(HashToken("a@x.com")) != 64 {
		t.Fatal("expected hex sha-256 digest")
	}
}
