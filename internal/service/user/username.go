package user

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	passwordLength   = 10
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Next free username for base: 'base.N' where N is one more than max numeric suffix among existing.
// Existing usernames that are not 'base.<digits>' are ignored
func NextUsername(base string, existing []string) string {
	prefix := base + "."
	maxSuffix := 0

	for _, name := range existing {
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok || !isDigits(suffix) {
			continue
		}

		n, err := strconv.Atoi(suffix)
		if err != nil || n == math.MaxInt {
			continue // too large to be incremented
		}
		maxSuffix = max(maxSuffix, n)
	}

	return prefix + strconv.Itoa(maxSuffix+1)
}

// Base username for profile: 'First.Last'
func ProfileUsername(firstName string, lastName string) string {
	return strings.TrimSpace(firstName) + "." + strings.TrimSpace(lastName)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Random alphanumeric password of fixed length
func GeneratePassword() (string, error) {
	var b strings.Builder
	b.Grow(passwordLength)

	limit := big.NewInt(int64(len(passwordAlphabet)))
	for range passwordLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("error while generating password. Err: %w", err)
		}
		b.WriteByte(passwordAlphabet[n.Int64()])
	}

	return b.String(), nil
}
